package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard origins are already filtered by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchAnalytics upgrades to a websocket and streams monetization events
// until the client goes away.
func (h *Handler) WatchAnalytics(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("analytics watch upgrade failed", zap.Error(err))
		return
	}
	h.hub.Add(conn)
	defer h.hub.Remove(conn)

	// Drain client frames; the connection is write-only from our side.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
