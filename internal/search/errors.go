package search

import (
	"errors"
	"fmt"

	"github.com/nao1215/duckfetch/internal/proxy"
)

// ErrUnexpectedStatus is the cause of an attempt that received a non-2xx
// response.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// AttemptError describes one failed attempt.
// Search never returns it directly; it is reachable through FetchError.Last.
type AttemptError struct {
	// Attempt is the 1-based attempt number.
	Attempt int

	// Proxy is the endpoint used. The zero value means a direct connection.
	Proxy proxy.Endpoint

	// StatusCode is the HTTP status received, or 0 when no response arrived.
	StatusCode int

	// Err is the transport, status or read error.
	Err error
}

// Error implements error. Proxy credentials are redacted.
func (e *AttemptError) Error() string {
	via := "direct connection"
	if !e.Proxy.IsZero() {
		via = e.Proxy.Redacted()
	}
	return fmt.Sprintf("attempt %d via %s: %v", e.Attempt, via, e.Err)
}

// Unwrap returns the cause of the attempt failure.
func (e *AttemptError) Unwrap() error {
	return e.Err
}

// FetchError is returned by Search when no attempt succeeded.
type FetchError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Last is the failure of the final attempt. Nil when the search was
	// cancelled before its first attempt.
	Last *AttemptError

	// Cause is set when the context ended the search before the retry
	// limit was reached.
	Cause error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		if e.Last == nil {
			return fmt.Sprintf("search aborted after %d attempts: %v", e.Attempts, e.Cause)
		}
		return fmt.Sprintf("search aborted after %d attempts: %v (last error: %v)", e.Attempts, e.Cause, e.Last)
	}
	return fmt.Sprintf("all %d attempts failed, last error: %v", e.Attempts, e.Last)
}

// Unwrap exposes Cause and Last to errors.Is and errors.As.
func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.Last != nil {
		errs = append(errs, e.Last)
	}
	return errs
}
