package session

import (
	"sync"

	"github.com/google/uuid"

	"flightbook/internal/core/tx"
)

// Registry tracks live sessions by id. It hands each new session its own
// transaction manager so open-transaction accounting never crosses sessions.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	newManager func() tx.Manager
}

// NewRegistry creates a registry. newManager is called once per session.
func NewRegistry(newManager func() tx.Manager) *Registry {
	return &Registry{
		sessions:   make(map[uuid.UUID]*Session),
		newManager: newManager,
	}
}

// Create registers a new session and returns it.
func (r *Registry) Create() *Session {
	s := New(r.newManager())
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove drops the session with the given id.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
