package tor

import "errors"

var (
	// ErrNotRunning is returned when the embedded daemon has not been
	// started or has been stopped.
	ErrNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrAlreadyRunning is returned by Start on a running daemon.
	ErrAlreadyRunning = errors.New("embedded Tor daemon is already running")
)
