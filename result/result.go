// Package result carries the outcome of a pipeline operation as a value.
package result

import "net/http"

// Fault classifies a failure for the boundary layer
type Fault int

const (
	// FaultNone marks a successful result
	FaultNone Fault = iota
	// FaultClient means the caller supplied bad or missing input
	FaultClient
	// FaultBackend means the reasoning backend or its output failed
	FaultBackend
	// FaultNotFound means the requested record does not exist
	FaultNotFound
	// FaultUnavailable means an optional collaborator is not configured
	FaultUnavailable
)

// Result is either a value or a user-safe error message, never both
type Result[T any] struct {
	value T
	err   string
	fault Fault
}

// Ok wraps a successful value
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure. The message is returned to callers verbatim, so it
// must not contain backend or validator detail.
func Fail[T any](fault Fault, message string) Result[T] {
	if fault == FaultNone {
		fault = FaultBackend
	}
	return Result[T]{err: message, fault: fault}
}

// Success reports whether the result holds a value
func (r Result[T]) Success() bool {
	return r.fault == FaultNone
}

// Value returns the payload; the zero value on failure
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the user-safe failure message
func (r Result[T]) Error() string {
	return r.err
}

// Fault returns the failure class
func (r Result[T]) Fault() Fault {
	return r.fault
}

// Status maps the result onto an HTTP status code
func (r Result[T]) Status() int {
	switch r.fault {
	case FaultNone:
		return http.StatusOK
	case FaultClient:
		return http.StatusBadRequest
	case FaultNotFound:
		return http.StatusNotFound
	case FaultUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Envelope serializes the result as {success, <key>: value} or
// {success: false, error: message}. The payload key differs per operation.
func (r Result[T]) Envelope(key string) map[string]any {
	if !r.Success() {
		return map[string]any{
			"success": false,
			"error":   r.err,
		}
	}
	return map[string]any{
		"success": true,
		key:       r.value,
	}
}
