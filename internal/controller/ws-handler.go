package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	roomservice "github.com/roomcast/server/internal/service/room"
	"github.com/roomcast/server/pkg/ctxlogger"
)

// websocket is the single realtime entrypoint. The client identifies itself
// with a persistent user-id query param; the optional secret param grants
// admin rights when it matches the server secret.
func (c controller) websocket(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("user-id")
	if userId == "" {
		http.Error(w, "user-id is required", http.StatusBadRequest)
		return
	}
	secret := r.URL.Query().Get("secret")

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	registerResp, err := c.roomService.RegisterConnection(r.Context(), &roomservice.RegisterConnectionParams{
		Conn:   conn,
		UserId: userId,
		Secret: secret,
	})
	if err != nil {
		// Session takeover attempt: the user id is already bound to a live
		// connection. The existing session stays untouched.
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4000, "user id already connected"),
			time.Now().Add(5*time.Second))
		conn.Close()
		return
	}

	ctx := context.WithValue(r.Context(), userIdCtxKey, userId)
	ctx = context.WithValue(ctx, connectionIdCtxKey, registerResp.ConnectionId)
	ctx = context.WithValue(ctx, isAdminCtxKey, registerResp.IsAdmin)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userId))

	if registerResp.IsAdmin {
		if err := c.writeToConn(ctx, conn, &Output{
			Type:    "ADMIN_GRANTED",
			Payload: nil,
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to write admin notice", "error", err)
		}
	}

	defer c.writers.forget(conn)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "websocket connection closed", "error", err)
	}

	dropCtx := context.WithoutCancel(ctx)
	dropResp, err := c.roomService.DropConnection(dropCtx, conn)
	if err != nil {
		c.logger.DebugContext(dropCtx, "failed to drop connection", "error", err)
		return
	}

	c.broadcastDeparture(dropCtx, "USER_DISCONNECTED", dropResp.Disconnect)
}

// broadcastDeparture announces a departed user to the survivors, followed by
// a host-change notice when host authority failed over.
func (c controller) broadcastDeparture(ctx context.Context, eventType string, d roomservice.DisconnectResult) {
	if d.Room == nil {
		return
	}

	if err := c.broadcast(ctx, d.Conns, &Output{
		Type: eventType,
		Payload: map[string]any{
			"user": d.DisconnectedUser,
			"room": d.Room,
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to broadcast departure", "error", err)
	}

	if d.NewHost != nil {
		if err := c.broadcast(ctx, d.Conns, &Output{
			Type: "HOST_CHANGED",
			Payload: map[string]any{
				"new_host": d.NewHost,
				"room":     d.Room,
			},
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to broadcast host change", "error", err)
		}
	}
}

// requestPlayerSync asks the host for its live player state and, once the
// answer lands, broadcasts a consistency sync built from re-read room state.
// Timeouts and a vanished room skip the sync silently.
func (c controller) requestPlayerSync(ctx context.Context, hostConn *websocket.Conn, requestId, senderId string) {
	if hostConn == nil || requestId == "" {
		return
	}

	if err := c.writeToConn(ctx, hostConn, &Output{
		Type: "PLAYER_SNAPSHOT_REQUEST",
		Payload: map[string]any{
			"request_id": requestId,
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to request player snapshot", "error", err)
		c.roomService.DiscardPlayerSnapshot(ctx, requestId)
		return
	}

	syncCtx := context.WithoutCancel(ctx)
	go func() {
		syncResp, err := c.roomService.AwaitRoomSync(syncCtx, &roomservice.AwaitRoomSyncParams{
			RequestId: requestId,
			SenderId:  senderId,
		})
		if err != nil {
			c.logger.DebugContext(syncCtx, "player sync skipped", "error", err)
			return
		}

		if err := c.broadcast(syncCtx, syncResp.Conns, &Output{
			Type: "PLAYER_SYNC",
			Payload: map[string]any{
				"player": syncResp.Snapshot,
				"room":   syncResp.Room,
			},
		}); err != nil {
			c.logger.DebugContext(syncCtx, "failed to broadcast player sync", "error", err)
		}
	}()
}
