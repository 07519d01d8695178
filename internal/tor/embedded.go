package tor

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/duckfetch/internal/proxy"
	"github.com/nao1215/tornago"
)

// DefaultStartupTimeout is how long Start waits for Tor to bootstrap.
const DefaultStartupTimeout = 3 * time.Minute

// daemon is the part of *tornago.TorProcess that EmbeddedTor uses.
type daemon interface {
	SocksAddr() string
	ControlAddr() string
	Stop() error
}

// launcher starts a daemon and blocks until it has bootstrapped.
type launcher func(startupTimeout time.Duration) (daemon, error)

// launchTornago starts a Tor daemon on OS-assigned ports.
func launchTornago(startupTimeout time.Duration) (daemon, error) {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(startupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}
	return process, nil
}

// EmbeddedTor manages the lifecycle of an embedded Tor daemon.
// It is not safe for concurrent use.
type EmbeddedTor struct {
	process        daemon
	startupTimeout time.Duration
	launch         launcher
}

// EmbeddedTorOption configures an EmbeddedTor.
type EmbeddedTorOption func(*EmbeddedTor)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedTorOption {
	return func(e *EmbeddedTor) {
		if timeout > 0 {
			e.startupTimeout = timeout
		}
	}
}

// NewEmbeddedTor creates an embedded Tor manager. Call Start to launch it.
func NewEmbeddedTor(opts ...EmbeddedTorOption) *EmbeddedTor {
	e := &EmbeddedTor{
		startupTimeout: DefaultStartupTimeout,
		launch:         launchTornago,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start launches the daemon and waits until it has bootstrapped or ctx is
// done. A daemon that finishes starting after ctx was cancelled is stopped.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	if e.process != nil {
		return ErrAlreadyRunning
	}

	type launchResult struct {
		process daemon
		err     error
	}
	resultCh := make(chan launchResult, 1)

	go func() {
		process, err := e.launch(e.startupTimeout)
		resultCh <- launchResult{process, err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return result.err
		}
		if err := ctx.Err(); err != nil {
			_ = result.process.Stop() //nolint:errcheck // Best effort cleanup
			return err
		}
		e.process = result.process
		return nil
	case <-ctx.Done():
		go func() {
			if result := <-resultCh; result.err == nil {
				_ = result.process.Stop() //nolint:errcheck // Best effort cleanup
			}
		}()
		return ctx.Err()
	}
}

// Stop shuts the daemon down. It is safe to call more than once.
func (e *EmbeddedTor) Stop() error {
	if e.process == nil {
		return nil
	}

	err := e.process.Stop()
	e.process = nil
	return err
}

// IsRunning reports whether the daemon is running.
func (e *EmbeddedTor) IsRunning() bool {
	return e.process != nil
}

// SocksAddr returns the SOCKS5 listener address, or "" when not running.
func (e *EmbeddedTor) SocksAddr() string {
	if e.process == nil {
		return ""
	}
	return e.process.SocksAddr()
}

// ControlAddr returns the control port address, or "" when not running.
func (e *EmbeddedTor) ControlAddr() string {
	if e.process == nil {
		return ""
	}
	return e.process.ControlAddr()
}

// Endpoint returns the daemon's SOCKS5 listener as a proxy endpoint.
func (e *EmbeddedTor) Endpoint() (proxy.Endpoint, error) {
	if e.process == nil {
		return "", ErrNotRunning
	}
	return proxy.Endpoint(proxy.SchemeSOCKS5 + "://" + e.process.SocksAddr()), nil
}
