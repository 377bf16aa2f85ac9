package session

import (
	"sync"
	"testing"
	"time"

	"axon/internal/types"
)

func TestGetOrCreateMintsID(t *testing.T) {
	s := NewStore()
	id := s.GetOrCreate("")
	if id == "" {
		t.Fatal("expected a minted session id")
	}
	if s.Len() != 1 {
		t.Fatalf("expected one session, got %d", s.Len())
	}

	// A second empty call mints a distinct session.
	other := s.GetOrCreate("")
	if other == id {
		t.Fatal("expected a fresh id per empty call")
	}
}

func TestGetOrCreateIsIdempotentForKnownID(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("abc")
	s.Mutate("abc", func(st *types.ConversationState) {
		st.AddMessage("user", "hello")
	})
	s.GetOrCreate("abc")

	snap, ok := s.Snapshot("abc")
	if !ok {
		t.Fatal("session should exist")
	}
	if len(snap.Messages) != 1 {
		t.Fatalf("re-creating a known session must not reset it, got %d messages", len(snap.Messages))
	}
}

func TestMutateUnknownSession(t *testing.T) {
	s := NewStore()
	if s.Mutate("missing", func(*types.ConversationState) {}) {
		t.Fatal("mutating an unknown session must report false")
	}
	if _, ok := s.Snapshot("missing"); ok {
		t.Fatal("snapshot of an unknown session must report false")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("abc")
	s.Mutate("abc", func(st *types.ConversationState) {
		st.AddMessage("user", "original")
		st.CurrentIntent = &types.IntentAnalysis{PropensityScore: 50}
	})

	snap, _ := s.Snapshot("abc")
	snap.Messages[0].Content = "tampered"
	snap.CurrentIntent.PropensityScore = 0

	fresh, _ := s.Snapshot("abc")
	if fresh.Messages[0].Content != "original" {
		t.Fatal("snapshot mutation leaked into the store")
	}
	if fresh.CurrentIntent.PropensityScore != 50 {
		t.Fatal("intent pointer must be deep-copied")
	}
}

func TestSnapshotsReturnsAllSessions(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("a")
	s.GetOrCreate("b")
	s.GetOrCreate("c")
	if got := len(s.Snapshots()); got != 3 {
		t.Fatalf("expected 3 snapshots, got %d", got)
	}
}

func TestWithTurnSerializesTurns(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("abc")

	if s.WithTurn("missing", func() {}) {
		t.Fatal("unknown session must report false")
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	go s.WithTurn("abc", func() {
		close(entered)
		<-release
	})
	<-entered

	second := make(chan struct{})
	go s.WithTurn("abc", func() { close(second) })

	select {
	case <-second:
		t.Fatal("second turn ran while the first held the turn lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second turn never ran after release")
	}
}

func TestSnapshotDoesNotWaitOnTurn(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("abc")
	s.Mutate("abc", func(st *types.ConversationState) {
		st.AddMessage("user", "hello")
	})

	entered := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go s.WithTurn("abc", func() {
		close(entered)
		<-release
	})
	<-entered

	done := make(chan struct{})
	go func() {
		s.Snapshot("abc")
		s.Snapshots()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("readers must not block behind an in-flight turn")
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("abc")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Mutate("abc", func(st *types.ConversationState) {
				st.AddMessage("user", "x")
				st.TotalRevenue += 1
			})
		}()
	}
	wg.Wait()

	snap, _ := s.Snapshot("abc")
	if len(snap.Messages) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(snap.Messages))
	}
	if snap.TotalRevenue != 50 {
		t.Fatalf("expected revenue 50, got %v", snap.TotalRevenue)
	}
}
