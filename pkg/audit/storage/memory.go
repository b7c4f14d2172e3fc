package storage

import (
	"context"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

// MemoryStorage is an in-memory audit backend for tests and ephemeral
// deployments. Records are kept in insertion order.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.Record
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements audit.Storage.
func (s *MemoryStorage) Store(ctx context.Context, rec *audit.Record) error {
	copied := *rec
	s.mu.Lock()
	s.records = append(s.records, &copied)
	s.mu.Unlock()
	return nil
}

// Query implements audit.Storage, returning matches newest first.
func (s *MemoryStorage) Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if filter.DataSubject != "" && rec.DataSubject != filter.DataSubject {
			continue
		}
		if filter.Action != "" && rec.Decision.Action != filter.Action {
			continue
		}
		if !filter.Since.IsZero() && rec.RecordedAt.Before(filter.Since) {
			continue
		}
		copied := *rec
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Count implements audit.Storage.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteOlderThan implements audit.Storage.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var removed int64
	for _, rec := range s.records {
		if rec.RecordedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return removed, nil
}

// Close implements audit.Storage.
func (s *MemoryStorage) Close() error {
	return nil
}
