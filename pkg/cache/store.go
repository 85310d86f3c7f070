package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the cache capability used by content resolution. Get reports a
// miss with ok == false and a nil error; a non-nil error means the backend
// failed.
type Store interface {
	Get(ctx context.Context, namespace, id string) (value string, ok bool, err error)
	Set(ctx context.Context, namespace, id, value string, ttl time.Duration) error
}

// Admin is implemented by stores that support administration commands.
type Admin interface {
	Delete(ctx context.Context, namespace, id string) (bool, error)
	Flush(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats describes the state of a cache backend.
type Stats struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"`
	Keys    int64  `json:"keys"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	TTL     string `json:"ttl,omitempty"`
}

// Key derives the storage key for id. The id is hashed so keys have a fixed
// length whatever the content key looks like.
func Key(prefix, namespace, id string) string {
	sum := sha256.Sum256([]byte(id))
	return prefix + ":" + namespace + ":" + hex.EncodeToString(sum[:])
}
