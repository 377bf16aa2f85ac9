package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"axon/internal/gateway/handler"
	"axon/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/chat", h.Chat)
	r.Get("/session/{sessionID}", h.Session)
	r.Get("/analytics", h.Analytics)
	r.Get("/stats", h.Stats)
	r.Get("/ws/analytics", h.WatchAnalytics)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/keys", h.ListKeys)
		r.Post("/keys", h.CreateKey)
		r.Delete("/keys/{keyID}", h.RevokeKey)
		r.Get("/stats", h.AdminStats)
	})

	return middleware.CORS(r)
}
