// Package session holds per-conversation state in process memory.
// There is no persistence guarantee; lifecycle is bounded by the process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"axon/internal/types"
)

// Store is the session-indexed map behind the conversation buffers.
// Insert/lookup are safe for concurrent use. Each session carries two locks:
// a turn lock held across a whole pipeline turn (WithTurn), and a state lock
// held only for the duration of one Mutate/Snapshot, so readers never wait
// behind a slow turn.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	turnMu sync.Mutex
	mu     sync.Mutex
	state  types.ConversationState
}

func NewStore() *Store {
	return &Store{sessions: map[string]*entry{}}
}

// GetOrCreate returns the session ID, minting a fresh one when id is empty,
// and creates the conversation state on first sight.
func (s *Store) GetOrCreate(id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.sessions[id] = &entry{state: types.ConversationState{
			SessionID: id,
			CreatedAt: time.Now(),
		}}
	}
	return id
}

// WithTurn runs fn while holding the session's turn lock: at most one
// in-flight turn per session at a time. Callers still access state through
// Mutate/Snapshot inside fn; the turn lock only sequences whole turns.
// Returns false when the session does not exist.
func (s *Store) WithTurn(id string, fn func()) bool {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.turnMu.Lock()
	defer e.turnMu.Unlock()
	fn()
	return true
}

// Mutate runs fn under the session's state lock. This is the only way state
// is modified; one writer per session at a time. Returns false when the
// session does not exist.
func (s *Store) Mutate(id string, fn func(*types.ConversationState)) bool {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
	return true
}

// Snapshot returns a copy of the session state safe to read without holding
// the session lock.
func (s *Store) Snapshot(id string) (types.ConversationState, bool) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return types.ConversationState{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyState(e.state), true
}

// Snapshots returns copies of every session, for analytics aggregation.
func (s *Store) Snapshots() []types.ConversationState {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]types.ConversationState, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, copyState(e.state))
		e.mu.Unlock()
	}
	return out
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func copyState(st types.ConversationState) types.ConversationState {
	cp := st
	cp.Messages = append([]types.Message(nil), st.Messages...)
	cp.NudgesShown = append([]types.Nudge(nil), st.NudgesShown...)
	cp.RevenueEvents = append([]types.RevenueEvent(nil), st.RevenueEvents...)
	if st.CurrentIntent != nil {
		intent := *st.CurrentIntent
		cp.CurrentIntent = &intent
	}
	return cp
}
