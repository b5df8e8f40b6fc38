package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Handle("/metrics", promhttp.Handler())

		r.Get("/rooms", c.listRooms)
		r.Delete("/rooms", c.clearRooms)
		r.Get("/rooms/feed", c.roomsFeed)
		r.Get("/users", c.listUsers)
		r.Get("/stats", c.getStats)

		r.Get("/ws", c.websocket)
	})

	return r
}
