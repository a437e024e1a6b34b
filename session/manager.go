package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager keeps sessions in memory, keyed by an opaque id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  func() *Session
}

// NewManager creates a Manager that builds new sessions with factory.
func NewManager(factory func() *Session) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Get returns the session for id, creating one (with a fresh id) when id is
// empty or unknown.
func (m *Manager) Get(id string) (string, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok && id != "" {
		return id, s
	}
	id = uuid.New().String()
	s := m.factory()
	m.sessions[id] = s
	return id, s
}

// Lookup returns the session for id without creating one.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok && id != ""
}

// Sweep closes and forgets sessions idle for longer than maxIdle. Sessions
// waiting on a search are kept. It returns how many were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.expired(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
