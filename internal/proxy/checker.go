package proxy

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultCheckTimeout bounds a single endpoint probe.
const DefaultCheckTimeout = 5 * time.Second

// DefaultCheckTarget is the host:port a probe asks HTTP proxies to tunnel to.
const DefaultCheckTarget = "duckduckgo.com:443"

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthPassword = 0x02
	socks5AuthNoAccept = 0xFF
)

// Status is the outcome of probing one endpoint.
type Status int

const (
	// StatusOK indicates the endpoint speaks the protocol of its scheme.
	StatusOK Status = iota

	// StatusWrongType indicates the endpoint answered with another protocol.
	StatusWrongType

	// StatusCannotConnect indicates no connection could be established.
	StatusCannotConnect

	// StatusTimeout indicates the endpoint did not answer in time.
	StatusTimeout

	// StatusInvalid indicates the endpoint could not be parsed.
	StatusInvalid
)

// String returns a human-readable description of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWrongType:
		return "wrong protocol"
	case StatusCannotConnect:
		return "cannot connect"
	case StatusTimeout:
		return "timeout"
	case StatusInvalid:
		return "invalid endpoint"
	default:
		return "unknown"
	}
}

// Error returns the sentinel error for this status, or nil if OK.
func (s Status) Error() error {
	switch s {
	case StatusOK:
		return nil
	case StatusWrongType:
		return ErrProxyWrongType
	case StatusCannotConnect:
		return ErrProxyCannotConnect
	case StatusTimeout:
		return ErrProxyTimeout
	case StatusInvalid:
		return ErrInvalidEndpoint
	default:
		return errors.New("unknown proxy status")
	}
}

// Checker probes proxy endpoints without sending a search request.
//
// For socks5 endpoints it performs the SOCKS5 method negotiation; for http
// and https endpoints it asks the proxy to open a CONNECT tunnel and checks
// that an HTTP status line comes back. The tunnel itself is not used.
type Checker struct {
	// timeout bounds each probe, dial included.
	timeout time.Duration

	// target is the host:port used in CONNECT requests.
	target string
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithCheckTimeout sets the per-probe timeout.
func WithCheckTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCheckTarget sets the host:port used in CONNECT requests.
func WithCheckTarget(target string) CheckerOption {
	return func(c *Checker) {
		if target != "" {
			c.target = target
		}
	}
}

// NewChecker creates a Checker with DefaultCheckTimeout and DefaultCheckTarget.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		timeout: DefaultCheckTimeout,
		target:  DefaultCheckTarget,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check probes ep and reports the result.
func (c *Checker) Check(ctx context.Context, ep Endpoint) Status {
	u, err := ep.URL()
	if err != nil {
		return StatusInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", u.Host)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return StatusTimeout
		}
		return StatusCannotConnect
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return StatusCannotConnect
	}

	switch u.Scheme {
	case SchemeSOCKS5:
		return checkSOCKS5(conn, u)
	case SchemeHTTPS:
		tlsConn := tls.Client(conn, &tls.Config{ServerName: u.Hostname(), MinVersion: tls.VersionTLS12})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return classifyIOError(err, StatusWrongType)
		}
		return c.checkConnect(tlsConn, u)
	default:
		return c.checkConnect(conn, u)
	}
}

// checkSOCKS5 performs the SOCKS5 method negotiation.
// Username/password authentication is offered only when the endpoint
// carries credentials.
func checkSOCKS5(conn net.Conn, u *url.URL) Status {
	greeting := []byte{socks5Version, 0x01, socks5AuthNone}
	if u.User != nil {
		greeting = []byte{socks5Version, 0x02, socks5AuthNone, socks5AuthPassword}
	}
	if _, err := conn.Write(greeting); err != nil {
		return StatusCannotConnect
	}

	// Server responds: version (1 byte) + selected auth method (1 byte)
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return classifyIOError(err, StatusWrongType)
	}

	if resp[0] != socks5Version {
		return StatusWrongType
	}
	switch resp[1] {
	case socks5AuthNone:
		return StatusOK
	case socks5AuthPassword:
		if u.User != nil {
			return StatusOK
		}
		return StatusWrongType
	case socks5AuthNoAccept:
		// Speaks SOCKS5 but accepts none of the offered methods.
		return StatusWrongType
	default:
		return StatusWrongType
	}
}

// checkConnect sends a CONNECT request and expects an HTTP status line.
// Any status, including 407, proves the endpoint is an HTTP proxy.
func (c *Checker) checkConnect(conn net.Conn, u *url.URL) Status {
	var b strings.Builder
	fmt.Fprintf(&b, "CONNECT %s HTTP/1.1\r\nHost: %s\r\n", c.target, c.target)
	if u.User != nil {
		if pass, ok := u.User.Password(); ok {
			fmt.Fprintf(&b, "Proxy-Authorization: Basic %s\r\n", basicAuth(u.User.Username(), pass))
		}
	}
	b.WriteString("\r\n")

	if _, err := io.WriteString(conn, b.String()); err != nil {
		return StatusCannotConnect
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return classifyIOError(err, StatusWrongType)
	}
	if !strings.HasPrefix(line, "HTTP/") {
		return StatusWrongType
	}
	return StatusOK
}

// classifyIOError maps a read error to StatusTimeout or fallback.
func classifyIOError(err error, fallback Status) Status {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	return fallback
}

// basicAuth encodes credentials for a Proxy-Authorization header.
func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
