package analytics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Add(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	// The server handler runs on its own goroutine; wait for registration.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Watchers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Watchers() != 1 {
		t.Fatalf("expected one watcher, got %d", hub.Watchers())
	}

	sent := Event{Type: "nudge_impression", SessionID: "s1", Product: "Kit", Revenue: 4.5, Timestamp: time.Now()}
	hub.Broadcast(sent)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Type != sent.Type || got.SessionID != sent.SessionID || got.Revenue != sent.Revenue {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestHubBroadcastDropsFullBuffer(t *testing.T) {
	hub := NewHub(nil)

	// Register a watcher whose queue is already full and has no writer
	// draining it, standing in for a stalled connection.
	conn := &websocket.Conn{}
	ch := make(chan Event, 1)
	ch <- Event{Type: "stalled"}
	hub.mu.Lock()
	hub.conns[conn] = ch
	hub.mu.Unlock()

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Event{Type: "next", Timestamp: time.Now()})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a stalled watcher")
	}

	if hub.Watchers() != 0 {
		t.Fatalf("stalled watcher should be dropped, got %d", hub.Watchers())
	}
	<-ch // buffered event
	if _, ok := <-ch; ok {
		t.Fatal("dropped watcher's queue should be closed")
	}
}

func TestHubRemove(t *testing.T) {
	hub := NewHub(nil)
	// Removing an unknown connection is a no-op.
	hub.Remove(&websocket.Conn{})
	if hub.Watchers() != 0 {
		t.Fatalf("expected no watchers, got %d", hub.Watchers())
	}
}

func TestHubBroadcastDropsClosedWatcher(t *testing.T) {
	hub := NewHub(nil)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Watchers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	client.Close()

	// The first write after the close may still land in OS buffers; the
	// second one observes the broken pipe and drops the watcher.
	for i := 0; i < 10 && hub.Watchers() > 0; i++ {
		hub.Broadcast(Event{Type: "ping", Timestamp: time.Now()})
		time.Sleep(20 * time.Millisecond)
	}
	if hub.Watchers() != 0 {
		t.Fatalf("closed watcher should be dropped, still %d", hub.Watchers())
	}
}
