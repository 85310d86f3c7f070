package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process Store with LRU eviction. Every entry shares the
// TTL given at construction; the per-call ttl of Set is ignored.
type Memory struct {
	prefix string
	ttl    time.Duration
	lru    *expirable.LRU[string, string]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates an in-process store holding at most size entries.
func NewMemory(prefix string, size int, ttl time.Duration) *Memory {
	return &Memory{
		prefix: prefix,
		ttl:    ttl,
		lru:    expirable.NewLRU[string, string](size, nil, ttl),
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, namespace, id string) (string, bool, error) {
	value, ok := m.lru.Get(Key(m.prefix, namespace, id))
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return value, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, namespace, id, value string, _ time.Duration) error {
	m.lru.Add(Key(m.prefix, namespace, id), value)
	return nil
}

// Delete implements Admin.
func (m *Memory) Delete(_ context.Context, namespace, id string) (bool, error) {
	return m.lru.Remove(Key(m.prefix, namespace, id)), nil
}

// Flush implements Admin.
func (m *Memory) Flush(context.Context) (int, error) {
	n := m.lru.Len()
	m.lru.Purge()
	return n, nil
}

// Stats implements Admin.
func (m *Memory) Stats(context.Context) (Stats, error) {
	return Stats{
		Enabled: true,
		Backend: "memory",
		Keys:    int64(m.lru.Len()),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		TTL:     m.ttl.String(),
	}, nil
}
