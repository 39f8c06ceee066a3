package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager manages the open sessions.
type Manager struct {
	mu       sync.Mutex
	settings Settings
	sessions map[string]*Session
}

func NewManager(settings Settings) *Manager {
	return &Manager{
		settings: settings,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session and returns it.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := NewSession(uuid.NewString(), m.settings)
	m.sessions[s.ID] = s
	return s
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Remove forgets a session. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
