package proxy

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// startMockServer starts a one-shot TCP server that hands the accepted
// connection to handle and returns its address.
func startMockServer(t *testing.T, handle func(conn net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return listener.Addr().String()
}

// TestChecker tests endpoint probing against mock proxies.
func TestChecker(t *testing.T) {
	t.Parallel()

	checker := NewChecker(WithCheckTimeout(2 * time.Second))

	t.Run("invalid endpoint", func(t *testing.T) {
		t.Parallel()

		status := checker.Check(context.Background(), "gopher://a:1")
		if status != StatusInvalid {
			t.Errorf("expected StatusInvalid, got %v", status)
		}
	})

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to reserve port: %v", err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		status := checker.Check(context.Background(), Endpoint("socks5://"+addr))
		if status != StatusCannotConnect {
			t.Errorf("expected StatusCannotConnect, got %v", status)
		}
	})

	t.Run("SOCKS5 without auth is OK", func(t *testing.T) {
		t.Parallel()

		addr := startMockServer(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})
		})

		status := checker.Check(context.Background(), Endpoint("socks5://"+addr))
		if status != StatusOK {
			t.Errorf("expected StatusOK, got %v", status)
		}
	})

	t.Run("SOCKS5 selecting password auth is OK with credentials", func(t *testing.T) {
		t.Parallel()

		addr := startMockServer(t, func(conn net.Conn) {
			buf := make([]byte, 4)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x02})
		})

		status := checker.Check(context.Background(), Endpoint("socks5://user:pw@"+addr))
		if status != StatusOK {
			t.Errorf("expected StatusOK, got %v", status)
		}
	})

	t.Run("SOCKS5 rejecting all methods is wrong type", func(t *testing.T) {
		t.Parallel()

		addr := startMockServer(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})

		status := checker.Check(context.Background(), Endpoint("socks5://"+addr))
		if status != StatusWrongType {
			t.Errorf("expected StatusWrongType, got %v", status)
		}
	})

	t.Run("HTTP server on a socks5 endpoint is wrong type", func(t *testing.T) {
		t.Parallel()

		addr := startMockServer(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})

		status := checker.Check(context.Background(), Endpoint("socks5://"+addr))
		if status != StatusWrongType {
			t.Errorf("expected StatusWrongType, got %v", status)
		}
	})

	t.Run("HTTP proxy answering CONNECT is OK", func(t *testing.T) {
		t.Parallel()

		addr := startMockServer(t, func(conn net.Conn) {
			reader := bufio.NewReader(conn)
			for {
				line, err := reader.ReadString('\n')
				if err != nil || line == "\r\n" {
					break
				}
			}
			_, _ = conn.Write([]byte("HTTP/1.1 407 Proxy Authentication Required\r\n\r\n"))
		})

		status := checker.Check(context.Background(), Endpoint("http://"+addr))
		if status != StatusOK {
			t.Errorf("expected StatusOK, got %v", status)
		}
	})

	t.Run("silent server times out", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		t.Cleanup(func() { close(done) })
		addr := startMockServer(t, func(_ net.Conn) {
			<-done
		})

		quick := NewChecker(WithCheckTimeout(200 * time.Millisecond))
		status := quick.Check(context.Background(), Endpoint("http://"+addr))
		if status != StatusTimeout {
			t.Errorf("expected StatusTimeout, got %v", status)
		}
	})
}

// TestStatus tests Status String and Error methods.
func TestStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   Status
		str      string
		expected error
	}{
		{StatusOK, "OK", nil},
		{StatusWrongType, "wrong protocol", ErrProxyWrongType},
		{StatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{StatusTimeout, "timeout", ErrProxyTimeout},
		{StatusInvalid, "invalid endpoint", ErrInvalidEndpoint},
	}

	for _, tc := range testCases {
		if tc.status.String() != tc.str {
			t.Errorf("Status(%d).String() = %q, expected %q", tc.status, tc.status.String(), tc.str)
		}
		if err := tc.status.Error(); !errors.Is(err, tc.expected) {
			t.Errorf("Status(%d).Error() = %v, expected %v", tc.status, err, tc.expected)
		}
	}

	if Status(99).String() != "unknown" {
		t.Errorf("expected unknown status string, got %q", Status(99).String())
	}
	if Status(99).Error() == nil {
		t.Error("expected error for unknown status")
	}
}
