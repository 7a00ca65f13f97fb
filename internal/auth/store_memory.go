package auth

import (
	"context"
	"sync"

	"github.com/ludolist/backend/internal/repositories"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]repositories.SessionRecord)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]repositories.SessionRecord
}

// Save persists the provided session record.
func (s *InMemorySessionStore) Save(_ context.Context, record repositories.SessionRecord) error {
	s.mu.Lock()
	s.sessions[record.RefreshToken] = record
	s.mu.Unlock()
	return nil
}

// Find retrieves a session record by refresh token.
func (s *InMemorySessionStore) Find(_ context.Context, refreshToken string) (repositories.SessionRecord, error) {
	s.mu.RLock()
	record, ok := s.sessions[refreshToken]
	s.mu.RUnlock()
	if !ok {
		return repositories.SessionRecord{}, repositories.ErrNotFound
	}
	return record, nil
}

// Delete removes the session associated with the refresh token.
func (s *InMemorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	delete(s.sessions, refreshToken)
	s.mu.Unlock()
	return nil
}

// Has reports whether a refresh token exists. Useful for tests.
func (s *InMemorySessionStore) Has(refreshToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[refreshToken]
	return ok
}
