package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetRun for an unknown run id.
var ErrNotFound = errors.New("run not found")

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // "sqlite" or "memory"
	Operation string // operation that failed ("save", "list", ...)
	Cause     error  // underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
