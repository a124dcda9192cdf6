package lockout

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	failures    int
	windowEnds  time.Time
	lockedUntil time.Time
}

// InMemoryStore keeps counters in a map. Entries are dropped on Clear only.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*entry)}
}

func (s *InMemoryStore) RecordFailure(_ context.Context, key string, window time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	if !now.Before(e.windowEnds) {
		e.failures = 0
		e.windowEnds = now.Add(window)
	}
	e.failures++
	return e.failures, nil
}

func (s *InMemoryStore) Lock(_ context.Context, key string, until, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.lockedUntil = until
	e.failures = 0
	e.windowEnds = time.Time{}
	return nil
}

func (s *InMemoryStore) LockedUntil(_ context.Context, key string, now time.Time) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.lockedUntil) {
		return nil, nil
	}
	until := e.lockedUntil
	return &until, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
