package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Store is a flat key/value object store.
type Store interface {
	// Get returns the object body or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes body under key and returns the stored key.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Entry describes one stored object.
type Entry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ConfigError is returned when a feature needs remote storage that is not
// configured. It surfaces on first use, not at startup.
type ConfigError struct {
	// Field is the configuration field that must be set
	Field string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("remote storage not configured: set %s", e.Field)
}

// Content types written by copycheck.
const (
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeMarkdown = "text/markdown; charset=utf-8"
)
