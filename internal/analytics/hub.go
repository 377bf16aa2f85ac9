package analytics

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one live monetization event pushed to dashboard watchers.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Bucket    string    `json:"intent_bucket,omitempty"`
	Product   string    `json:"product,omitempty"`
	Revenue   float64   `json:"revenue,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	sendBuffer   = 16
	writeTimeout = 2 * time.Second
)

// Hub fans events out to connected websocket watchers. Each watcher owns a
// buffered send channel drained by its own writer goroutine, so Broadcast
// never waits on the network: a watcher whose buffer is full is dropped.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]chan Event
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{conns: map[*websocket.Conn]chan Event{}, logger: logger}
}

// Add registers a watcher connection and starts its writer.
func (h *Hub) Add(conn *websocket.Conn) {
	ch := make(chan Event, sendBuffer)
	h.mu.Lock()
	h.conns[conn] = ch
	h.mu.Unlock()
	go h.writeLoop(conn, ch)
}

// Remove unregisters and closes a watcher connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	if h.unregister(conn) {
		_ = conn.Close()
	}
}

// Broadcast queues the event for every watcher without waiting on any of
// them; a watcher whose send buffer is full is dropped on the spot.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.conns {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("dropping slow analytics watcher")
			delete(h.conns, conn)
			close(ch)
		}
	}
}

// Watchers reports the number of connected watchers.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// writeLoop drains one watcher's queue onto its connection. It exits when
// the channel is closed (watcher dropped or removed) or a write fails.
func (h *Hub) writeLoop(conn *websocket.Conn, ch <-chan Event) {
	defer conn.Close()
	for ev := range ch {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			h.unregister(conn)
			return
		}
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug("analytics watcher write failed", zap.Error(err))
			h.unregister(conn)
			return
		}
	}
}

// unregister removes the watcher and closes its queue; reports whether the
// watcher was still registered. Only Broadcast sends on the queue and both
// close paths run under the lock, so a close never races a send.
func (h *Hub) unregister(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
		close(ch)
	}
	return ok
}
