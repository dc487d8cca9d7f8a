// Package session keeps track of who is signed in. The CLI uses one Manager
// per process; the API server resolves a session per request through a
// Registry.
package session

import (
	"context"
	"errors"
	"sync"

	"novelhub/internal/backend"
)

// ErrNoSession means nothing is stored under the key.
var ErrNoSession = errors.New("no stored session")

// Store persists backend sessions client side.
type Store interface {
	Load(ctx context.Context, key string) (*backend.Session, error)
	Save(ctx context.Context, key string, s *backend.Session) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps sessions in process; for tests and one-shot commands.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]backend.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]backend.Session)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*backend.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, s *backend.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
