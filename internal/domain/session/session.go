// Package session holds the per-client session: login state, the itinerary
// cache from the most recent search, and the session's own transaction
// manager.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"flightbook/internal/core/tx"
	"flightbook/internal/domain/itinerary"
)

// Session is the single-ownership state of one client connection.
// Operations on a session are strictly sequential; Run provides the mutual
// exclusion. The store alone arbitrates between different sessions.
type Session struct {
	id  uuid.UUID
	txm tx.Manager

	// mu serializes public operations (Run). State lives under its own
	// lock because middleware reads identity while another request on the
	// same token may be inside Run.
	mu sync.Mutex

	stateMu     sync.RWMutex
	loggedIn    bool
	username    string
	itineraries map[int]itinerary.Legs
}

// New creates a session bound to its own transaction manager.
func New(txm tx.Manager) *Session {
	return &Session{
		id:          uuid.New(),
		txm:         txm,
		itineraries: make(map[int]itinerary.Legs),
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Manager returns the session's transaction manager.
func (s *Session) Manager() tx.Manager {
	return s.txm
}

// Run executes one public session operation. It serializes operations on the
// session, injects the session's transaction manager into ctx, and checks on
// every exit path that no transaction was left open.
func (s *Session) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer tx.AssertClean(s.txm)
	return fn(tx.WithManager(ctx, s.txm))
}

// LoggedIn reports whether the session has logged in.
func (s *Session) LoggedIn() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.loggedIn
}

// Username returns the logged-in username, empty before login.
func (s *Session) Username() string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.username
}

// SetUser marks the session as logged in. A session logs in at most once.
func (s *Session) SetUser(username string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.loggedIn = true
	s.username = username
}

// Itinerary returns the cached legs for a zero-based search index.
func (s *Session) Itinerary(index int) (itinerary.Legs, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	legs, ok := s.itineraries[index]
	return legs, ok
}

// SetItineraries replaces the itinerary cache with the latest search results.
func (s *Session) SetItineraries(cache map[int]itinerary.Legs) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.itineraries = cache
}

// ClearItineraries drops the cached search results.
func (s *Session) ClearItineraries() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.itineraries = make(map[int]itinerary.Legs)
}
