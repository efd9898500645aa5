package runstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process run store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Run)}
}

// Get retrieves a run by ID. Returns nil, nil if absent.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	// Copy so callers never share the stored record.
	return &run, nil
}

// Put stores a copy of the run, so later mutations by the caller do not
// leak into the store until the next Put.
func (s *MemoryStore) Put(ctx context.Context, run *Run) error {
	s.mu.Lock()
	s.runs[run.ID] = *run
	s.mu.Unlock()
	return nil
}

// List returns all runs, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Run, error) {
	s.mu.RLock()
	runs := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		r := run
		runs = append(runs, &r)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Delete removes a run.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.runs, id)
	s.mu.Unlock()
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
