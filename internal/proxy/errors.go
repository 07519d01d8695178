package proxy

import (
	"errors"
	"fmt"
)

// Proxy errors.
var (
	// ErrInvalidEndpoint is returned when an endpoint cannot be parsed as a URL
	// or uses a scheme other than http, https or socks5.
	ErrInvalidEndpoint = errors.New("invalid proxy endpoint")

	// ErrProxyWrongType is returned when the endpoint answers but does not
	// speak the protocol named by its scheme.
	ErrProxyWrongType = errors.New("proxy does not speak the expected protocol")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy
	// can be established.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy does not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// SourceError reports that a proxy list could not be read.
// It is not fatal: LoadFile returns an empty ring alongside it so the
// caller can continue with a direct connection.
type SourceError struct {
	// Path is the proxy list location.
	Path string

	// Err is the underlying I/O error.
	Err error
}

// Error implements error.
func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to load proxies from %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *SourceError) Unwrap() error {
	return e.Err
}
