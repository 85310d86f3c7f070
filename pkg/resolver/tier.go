package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Tier is one content source consulted by the Resolver.
//
// Get reports a miss with ok == false and a nil error. A non-nil error means
// the tier is unavailable for this lookup; the Resolver treats it like a miss
// and moves on.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) (content string, ok bool, err error)
	Set(ctx context.Context, key, content string) error
}

// Layer places a Tier in the resolution order.
type Layer struct {
	Tier Tier

	// Backfill marks the tier as a source whose hits are written into every
	// earlier tier. Local files are not a backfill source.
	Backfill bool
}

// ErrReadOnly is returned by tiers that cannot be written.
var ErrReadOnly = errors.New("tier is read-only")

// Local serves content from files below a root directory. Keys are
// slash-separated paths relative to the root.
type Local struct {
	root string
}

// NewLocal creates a local filesystem tier rooted at root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Name implements Tier.
func (l *Local) Name() string { return "local" }

// Root returns the directory the tier reads from.
func (l *Local) Root() string { return l.root }

// Get implements Tier.
func (l *Local) Get(_ context.Context, key string) (string, bool, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", false, fmt.Errorf("key %q escapes root", key)
	}

	data, err := os.ReadFile(filepath.Join(l.root, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set implements Tier. Local files are never written by the resolver.
func (l *Local) Set(context.Context, string, string) error {
	return ErrReadOnly
}
