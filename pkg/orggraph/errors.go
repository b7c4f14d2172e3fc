package orggraph

import (
	"fmt"
	"time"
)

// ConnectionError represents a network failure or timeout reaching the
// graph service.
type ConnectionError struct {
	// Endpoint is the endpoint path that failed.
	Endpoint string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("org graph connection error on %s: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication or authorization failure
// (HTTP 401 or 403).
type AuthError struct {
	// Endpoint is the endpoint path that rejected the request.
	Endpoint string

	// Message is the error message from the service.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("org graph authentication failed on %s: %s", e.Endpoint, e.Message)
}

// RateLimitError represents a rate limit exceeded error, either returned by
// the service (HTTP 429) or raised by the client-side self-check.
type RateLimitError struct {
	// Endpoint is the endpoint path that was rate limited, or empty for a
	// client-side limit.
	Endpoint string

	// RetryAfter is the duration to wait before retrying, if known.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("org graph rate limit exceeded on %s (retry after %s)", e.Endpoint, e.RetryAfter)
	}
	return fmt.Sprintf("org graph rate limit exceeded on %s", e.Endpoint)
}

// NotFoundError represents an unknown person or relationship (HTTP 404).
type NotFoundError struct {
	// Endpoint is the endpoint path queried.
	Endpoint string

	// Subject identifies what was not found.
	Subject string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("org graph entity not found on %s: %s", e.Endpoint, e.Subject)
}

// ValidationError represents a request the service rejected as malformed
// (HTTP 400 or 422).
type ValidationError struct {
	// Endpoint is the endpoint path that rejected the request.
	Endpoint string

	// Message describes what is invalid.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("org graph validation error on %s: %s", e.Endpoint, e.Message)
}

// APIError represents any other non-success response from the service.
type APIError struct {
	// Endpoint is the endpoint path.
	Endpoint string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the response body excerpt.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("org graph error on %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}
