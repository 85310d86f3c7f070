package cache

import "fmt"

// BackendError reports a failure of the cache backend itself, as opposed to
// a miss. A Guard that sees one disables the cache for the process.
type BackendError struct {
	// Backend is "redis" or "memory"
	Backend string

	// Op is the failed operation
	Op string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s cache %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}
