package legalhold

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory hold registry.
type MemoryStore struct {
	mu    sync.RWMutex
	holds map[holdKey]struct{}
}

type holdKey struct {
	kind Kind
	id   string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{holds: make(map[holdKey]struct{})}
}

// Place registers a hold.
func (s *MemoryStore) Place(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[holdKey{kind, id}] = struct{}{}
}

// Release removes a hold if present.
func (s *MemoryStore) Release(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holds, holdKey{kind, id})
}

// IsOnHold implements Lookup.
func (s *MemoryStore) IsOnHold(ctx context.Context, kind Kind, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.holds[holdKey{kind, id}]
	return ok, nil
}
