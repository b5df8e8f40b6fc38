package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/roomcast/server/pkg/rest"
)

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.roomService.ListRooms(r.Context())})
}

func (c controller) listUsers(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.roomService.ListUsers(r.Context())})
}

func (c controller) getStats(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.roomService.GetStats(r.Context())})
}

func (c controller) clearRooms(w http.ResponseWriter, r *http.Request) {
	if !c.isAdminRequest(r) {
		rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "forbidden"})
		return
	}

	c.roomService.ClearRooms(r.Context())
	c.logger.InfoContext(r.Context(), "all rooms cleared")

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "ok"})
}

// roomsFeed streams the public room listing over server-sent events. Every
// registry change pushes the complete current listing, never a diff.
func (c controller) roomsFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := c.roomService.SubscribeRooms()
	defer cancel()

	push := func() {
		data, err := json.Marshal(c.roomService.GetPublicRooms(r.Context()))
		if err != nil {
			c.logger.DebugContext(r.Context(), "failed to marshal room listing", "error", err)
			return
		}

		fmt.Fprintf(w, "event: rooms\ndata: %s\n\n", data)
		flusher.Flush()
	}

	push()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case _, ok := <-events:
			if !ok {
				return
			}
			push()
		}
	}
}
