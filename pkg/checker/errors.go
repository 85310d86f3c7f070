package checker

import (
	"fmt"
	"time"
)

// Kind classifies a RequestError.
type Kind string

const (
	// KindTransport is a network failure talking to the service.
	KindTransport Kind = "transport"

	// KindTimeout is a call that exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindCanceled is a call abandoned because its context was canceled.
	KindCanceled Kind = "canceled"

	// KindAuth is a rejected API key (HTTP 401 or 403).
	KindAuth Kind = "auth"

	// KindRateLimit is HTTP 429.
	KindRateLimit Kind = "rate_limit"

	// KindStatus is any other non-2xx status.
	KindStatus Kind = "status"

	// KindParse is a malformed or empty response body.
	KindParse Kind = "parse"

	// KindInvalid is a request rejected before sending.
	KindInvalid Kind = "invalid"
)

// RequestError is the single error type returned by Client.Check.
type RequestError struct {
	// Kind classifies the failure
	Kind Kind

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// RetryAfter is the server-provided wait for rate-limited calls
	RetryAfter time.Duration

	// Message describes the failure
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = msg + ": " + e.Cause.Error()
		}
	}
	switch {
	case e.StatusCode > 0 && e.RetryAfter > 0:
		return fmt.Sprintf("checker %s error (status %d, retry after %s): %s", e.Kind, e.StatusCode, e.RetryAfter, msg)
	case e.StatusCode > 0:
		return fmt.Sprintf("checker %s error (status %d): %s", e.Kind, e.StatusCode, msg)
	default:
		return fmt.Sprintf("checker %s error: %s", e.Kind, msg)
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the transport should try the call again.
func (e *RequestError) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}
