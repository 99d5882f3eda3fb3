package service

import (
	"fmt"
	"time"
)

// DefaultRetryAfter is used when a rate limit response carries no usable
// Retry-After value.
const DefaultRetryAfter = 10 * time.Second

// ActionResult is the outcome of one sub-action inside a batch request.
type ActionResult struct {
	StatusCode int
	Body       string
}

// OK reports whether the sub-action succeeded.
func (r ActionResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RateLimitError means the backend asked the caller to slow down.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// StatusError is any other non-success response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Body)
}

// TransportError wraps connection-level failures (refused, reset, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
