package objectstore

import (
	"context"
	"errors"
	"path"

	"mercator-hq/copycheck/pkg/resolver"
)

// Tier exposes a Store as a read-only content resolution tier. Content keys
// are joined under prefix.
type Tier struct {
	store  Store
	prefix string
}

// NewTier creates a remote resolution tier.
func NewTier(store Store, prefix string) *Tier {
	return &Tier{store: store, prefix: prefix}
}

// Name implements resolver.Tier.
func (t *Tier) Name() string { return "remote" }

// Get implements resolver.Tier.
func (t *Tier) Get(ctx context.Context, key string) (string, bool, error) {
	body, err := t.store.Get(ctx, path.Join(t.prefix, key))
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(body), true, nil
}

// Set implements resolver.Tier. The remote tier is only written by explicit
// uploads.
func (t *Tier) Set(context.Context, string, string) error {
	return resolver.ErrReadOnly
}
