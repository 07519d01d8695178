package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// Connection pool settings for a single-endpoint transport.
// Each search attempt builds its own transport, so the pool stays small.
const (
	transportMaxIdleConns        = 4
	transportIdleConnTimeout     = 30 * time.Second
	transportTLSHandshakeTimeout = 10 * time.Second
	transportDialTimeout         = 10 * time.Second
)

// NewTransport builds an http.Transport that routes requests through ep.
//
//   - http and https endpoints are used as forward proxies (http.ProxyURL)
//   - socks5 endpoints are dialed through golang.org/x/net/proxy
//   - the zero Endpoint yields a direct transport that ignores the
//     HTTP_PROXY family of environment variables
func NewTransport(ep Endpoint) (*http.Transport, error) {
	base := &net.Dialer{Timeout: transportDialTimeout}
	transport := &http.Transport{
		DialContext:         base.DialContext,
		MaxIdleConns:        transportMaxIdleConns,
		MaxIdleConnsPerHost: transportMaxIdleConns,
		IdleConnTimeout:     transportIdleConnTimeout,
		TLSHandshakeTimeout: transportTLSHandshakeTimeout,
	}

	if ep.IsZero() {
		return transport, nil
	}

	u, err := ep.URL()
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		transport.Proxy = http.ProxyURL(u)
	case SchemeSOCKS5:
		dialer, err := proxy.FromURL(u, base)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", ep.Redacted(), err)
		}
		transport.DialContext = contextDialer(dialer)
	}

	return transport, nil
}

// contextDialer adapts a proxy.Dialer to the DialContext signature.
// Dialers that do not support contexts are dialed in a goroutine so the
// caller can still give up when ctx is done.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)

		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			go func() {
				if result := <-resultCh; result.conn != nil {
					_ = result.conn.Close() //nolint:errcheck // Abandoned connection
				}
			}()
			return nil, ctx.Err()
		}
	}
}
