package cache

import (
	"context"
	"time"
)

// Namespace is the cache namespace used for rule content.
const Namespace = "content"

// Tier exposes a Store as a content resolution tier. Content keys become
// cache ids inside Namespace.
type Tier struct {
	store Store
	ttl   time.Duration
}

// NewTier creates a resolution tier over store. Entries are written with ttl.
func NewTier(store Store, ttl time.Duration) *Tier {
	return &Tier{store: store, ttl: ttl}
}

// Name implements resolver.Tier.
func (t *Tier) Name() string { return "cache" }

// Get implements resolver.Tier.
func (t *Tier) Get(ctx context.Context, key string) (string, bool, error) {
	return t.store.Get(ctx, Namespace, key)
}

// Set implements resolver.Tier.
func (t *Tier) Set(ctx context.Context, key, content string) error {
	return t.store.Set(ctx, Namespace, key, content, t.ttl)
}
