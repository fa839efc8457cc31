package contact

import (
	"context"
	"sync"
	"time"
)

// MarkerStore remembers recent successful submissions per visitor.
// Expiry is evaluated when reading, against now.
type MarkerStore interface {
	PutMarker(ctx context.Context, visitorID string, submittedAt time.Time, ttl time.Duration) error
	ValidMarker(ctx context.Context, visitorID string, now time.Time) (bool, error)
}

// MemoryStore is an in-process MarkerStore.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{expires: make(map[string]time.Time)}
}

// PutMarker implements MarkerStore.
func (s *MemoryStore) PutMarker(_ context.Context, visitorID string, submittedAt time.Time, ttl time.Duration) error {
	s.mu.Lock()
	s.expires[visitorID] = submittedAt.Add(ttl)
	s.mu.Unlock()
	return nil
}

// ValidMarker implements MarkerStore.
func (s *MemoryStore) ValidMarker(_ context.Context, visitorID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[visitorID]
	if !ok {
		return false, nil
	}
	if !now.Before(exp) {
		delete(s.expires, visitorID)
		return false, nil
	}
	return true, nil
}

// SweepExpired drops markers that expired before now.
func (s *MemoryStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, id)
			n++
		}
	}
	return n, nil
}
