package rules

import "fmt"

// LoadError is returned when the rule root cannot be read. It is fatal at
// startup.
type LoadError struct {
	// Path is the root directory
	Path string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rules from %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rules from %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned for an unknown rule name.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("rule %q not found", e.Name)
}

// ParseError is returned when a definition document's front matter is not
// valid YAML. The candidate is skipped.
type ParseError struct {
	// Key is the content key of the document
	Key string

	// Cause is the underlying YAML error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %q: invalid front matter: %v", e.Key, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// DuplicateError is reported when two directories declare the same rule
// name. The first one loaded is kept.
type DuplicateError struct {
	// Name is the contested rule name
	Name string

	// KeptDir is the directory of the rule that stays registered
	KeptDir string

	// RejectedDir is the directory that was skipped
	RejectedDir string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate rule %q: %q ignored, keeping %q", e.Name, e.RejectedDir, e.KeptDir)
}
