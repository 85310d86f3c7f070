package resolver

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when no tier yields content for a key.
type NotFoundError struct {
	// Key is the content key that was requested
	Key string

	// Tiers lists the tiers consulted, in order
	Tiers []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Tiers) == 0 {
		return fmt.Sprintf("content %q not found: no tiers configured", e.Key)
	}
	return fmt.Sprintf("content %q not found in %s", e.Key, strings.Join(e.Tiers, ", "))
}
