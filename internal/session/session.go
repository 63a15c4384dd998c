// =============================================================================
// Sales Report Bot - Session Store
// =============================================================================
//
// This module owns every in-progress report. A session is created when an
// operator starts a report and destroyed when the report completes or is
// cancelled. Nothing is persisted: a restart drops all sessions.
//
// CONCURRENCY:
//   The store is safe for use by many user event streams at once. Mutation
//   happens only through Update, which runs the caller's function while the
//   store lock is held, so a transition is atomic with respect to Put, Delete
//   and other updates. Callers never get a pointer to a stored session.
//
// =============================================================================

package session

import (
	"sync"
	"time"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// =============================================================================
// PHASE
// =============================================================================

// Phase is the sub-field currently being requested for the active product.
type Phase int

const (
	// AwaitingMorning asks for the quantity received in the morning.
	AwaitingMorning Phase = iota

	// AwaitingEvening asks for the quantity remaining in the evening.
	AwaitingEvening

	// AwaitingExchange asks for the quantity returned for exchange.
	AwaitingExchange
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case AwaitingMorning:
		return "morning"
	case AwaitingEvening:
		return "evening"
	case AwaitingExchange:
		return "exchange"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one operator's report in progress.
type Session struct {
	// Cursor is the index of the current product. Cursor == len(Rows) means
	// every product has been visited.
	Cursor int

	// Phase is the field requested for the product at Cursor.
	Phase Phase

	// Rows has one entry per catalog product, in catalog order.
	Rows []types.Row

	// StartedAt is when the report was started.
	StartedAt time.Time
}

// New creates a session positioned on the first product.
func New(rows []types.Row, startedAt time.Time) *Session {
	return &Session{
		Cursor:    0,
		Phase:     AwaitingMorning,
		Rows:      rows,
		StartedAt: startedAt,
	}
}

// Done reports whether every product has been visited.
func (s *Session) Done() bool {
	return s.Cursor >= len(s.Rows)
}

// clone returns a deep copy so callers cannot reach stored state.
func (s *Session) clone() Session {
	c := *s
	c.Rows = make([]types.Row, len(s.Rows))
	copy(c.Rows, s.Rows)
	return c
}

// =============================================================================
// STORE
// =============================================================================

// Store maps user identifiers to their active session.
type Store struct {
	mu sync.RWMutex
	m  map[string]*Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{m: make(map[string]*Session)}
}

// Put stores s for userID, replacing any session the user already had.
// It reports whether a previous session was replaced.
func (st *Store) Put(userID string, s *Session) (replaced bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, replaced = st.m[userID]
	st.m[userID] = s
	return replaced
}

// Get returns a copy of the user's session.
func (st *Store) Get(userID string) (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.m[userID]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// Delete removes the user's session. It reports whether one existed.
func (st *Store) Delete(userID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.m[userID]
	delete(st.m, userID)
	return ok
}

// Update runs fn on the user's session while holding the store lock. When fn
// returns true the session is removed. Update returns false, without calling
// fn, if the user has no session.
//
// fn must not block and must not call back into the store.
func (st *Store) Update(userID string, fn func(s *Session) (remove bool)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[userID]
	if !ok {
		return false
	}
	if fn(s) {
		delete(st.m, userID)
	}
	return true
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.m)
}
