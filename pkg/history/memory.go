package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps runs in process memory. It is used by tests and when
// history should not outlive the process.
type MemoryStore struct {
	runs map[string]*Run
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// SaveRun implements Store.
func (s *MemoryStore) SaveRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = cloneRun(run, true)
	return nil
}

// GetRun implements Store.
func (s *MemoryStore) GetRun(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRun(run, true), nil
}

// ListRuns implements Store.
func (s *MemoryStore) ListRuns(_ context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Run
	for _, run := range s.runs {
		if filter.Rule != "" && run.Rule != filter.Rule {
			continue
		}
		if !filter.Since.IsZero() && run.StartedAt.Before(filter.Since) {
			continue
		}
		out = append(out, cloneRun(run, false))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteBefore implements Store.
func (s *MemoryStore) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, run := range s.runs {
		if run.StartedAt.Before(t) {
			delete(s.runs, id)
			n++
		}
	}
	return n, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Size returns the number of stored runs.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func cloneRun(run *Run, withRows bool) *Run {
	c := *run
	c.Counts = make(Counts, len(run.Counts))
	for k, v := range run.Counts {
		c.Counts[k] = v
	}
	c.Rows = nil
	if withRows {
		c.Rows = make([]Row, len(run.Rows))
		for i, row := range run.Rows {
			row.Keywords = append([]string(nil), row.Keywords...)
			c.Rows[i] = row
		}
	}
	return &c
}
