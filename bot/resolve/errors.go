package resolve

import (
	"errors"
	"fmt"
)

// ErrResolutionFailed is the umbrella error for any failed resolution.
// Every failure sentinel below wraps it, so callers can check a single
// errors.Is(err, ErrResolutionFailed) before rendering a fallback line.
var ErrResolutionFailed = errors.New("resolve: resolution failed")

var (
	// ErrNoMatch is returned when the resolution service knows no song
	// for the link.
	ErrNoMatch = fmt.Errorf("%w: no match for link", ErrResolutionFailed)

	// ErrRateLimited is returned when the resolution service throttles us.
	ErrRateLimited = fmt.Errorf("%w: rate limit exceeded", ErrResolutionFailed)

	// ErrUpstream is returned on transport errors, non-success statuses
	// and undecodable responses.
	ErrUpstream = fmt.Errorf("%w: upstream error", ErrResolutionFailed)

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = fmt.Errorf("%w: resolution service unavailable", ErrResolutionFailed)

	// ErrTimeout is returned when a resolution exceeds the configured timeout.
	ErrTimeout = fmt.Errorf("%w: resolution timed out", ErrResolutionFailed)
)

// ResolutionError wraps a failure with the link that caused it.
// The underlying sentinel stays reachable through errors.Is and errors.As.
type ResolutionError struct {
	// URL is the link whose resolution failed.
	URL string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
