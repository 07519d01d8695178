package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoQuery is returned when neither a positional query nor a query file
	// provides anything to search for.
	ErrNoQuery = errors.New("no query specified: provide a query or use --query-file")

	// ErrInvalidTimeout is returned when the per-attempt timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch concurrency is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxResults is returned when the result cap is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidRetries is returned when the attempt limit is not positive.
	ErrInvalidRetries = errors.New("invalid retries: must be positive")

	// ErrConflictingReportFormats is returned when --markdown is combined
	// with --json or --results-only.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingEgress is returned when --tor is combined with a proxy list.
	ErrConflictingEgress = errors.New("conflicting egress: --tor and --proxies cannot be used together")

	// ErrInvalidTorStartupTimeout is returned when --tor is set with a
	// non-positive bootstrap timeout.
	ErrInvalidTorStartupTimeout = errors.New("invalid Tor startup timeout: must be positive")
)
