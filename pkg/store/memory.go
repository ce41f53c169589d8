package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mhalvorsen/enrichmap/pkg/errors"
)

// MemoryStore keeps runs in process memory. Used by the CLI and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// SaveRun persists a run, replacing any run with the same ID.
func (s *MemoryStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "run ID must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by ID.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	return run, nil
}

// ListRuns returns summaries of all runs, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, Summarize(run))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteRun removes a run by ID.
func (s *MemoryStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
	}
	delete(s.runs, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
