package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/duckfetch/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "duckfetch"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 15 * time.Second

	// DefaultBatchSize is the number of queries searched concurrently.
	// DuckDuckGo rate limits aggressively, so this stays small.
	DefaultBatchSize = 3

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultHistoryLimit is the number of entries listed by `history`.
	DefaultHistoryLimit = 20
)

// Config holds all configuration options for duckfetch.
// It is populated from defaults, the configuration file and CLI flags,
// in that order, and passed down explicitly.
type Config struct {
	// Queries is the list of query strings to search for.
	Queries []string

	// Region is the DuckDuckGo region code (kl). Empty means no region.
	Region string

	// TimeRange is the recency filter (df) in any form model.ParseTimeRange accepts.
	TimeRange string

	// MaxResults caps the results per query.
	MaxResults int

	// Retries is the number of attempts per query, including the first.
	Retries int

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// UserAgent replaces the default browser User-Agent when set.
	UserAgent string

	// ProxyFile is a newline-delimited proxy list. Empty means direct
	// connections, unless UseTor is set.
	ProxyFile string

	// UseTor routes every attempt through an embedded Tor daemon.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded daemon.
	TorStartupTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of queries searched concurrently.
	BatchSize int

	// ConfigFilePath is the explicit configuration file path.
	// If empty, .duckfetch is looked up in the current and home directories.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ResultsOnly writes the bare JSON result list ([{title, url, snippet}])
	// without the report envelope. It implies JSON output.
	ResultsOnly bool

	// HideSnippets omits snippet lines from text output.
	HideSnippets bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// NoHistory disables saving searches to the history database.
	NoHistory bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/duckfetch on Linux).
	DBDir string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxResults:        model.DefaultMaxResults,
		Retries:           model.DefaultRetryLimit,
		Timeout:           DefaultTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for duckfetch.
// On Linux: ~/.local/share/duckfetch
// On macOS: ~/Library/Application Support/duckfetch
// On Windows: %LOCALAPPDATA%\duckfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for duckfetch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Queries) == 0 {
		return ErrNoQuery
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}
	if c.Retries <= 0 {
		return ErrInvalidRetries
	}
	if _, err := model.ParseTimeRange(c.TimeRange); err != nil {
		return err
	}
	if (c.JSONReport || c.ResultsOnly) && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.UseTor && c.ProxyFile != "" {
		return ErrConflictingEgress
	}
	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}
	return nil
}

// SearchQueries builds one model.SearchQuery per configured query string.
func (c *Config) SearchQueries() ([]model.SearchQuery, error) {
	timeRange, err := model.ParseTimeRange(c.TimeRange)
	if err != nil {
		return nil, err
	}

	queries := make([]model.SearchQuery, 0, len(c.Queries))
	for i, text := range c.Queries {
		q := model.NewSearchQuery(text,
			model.WithRegion(c.Region),
			model.WithTimeRange(timeRange),
			model.WithMaxResults(c.MaxResults),
			model.WithRetryLimit(c.Retries),
		)
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}
		queries = append(queries, q)
	}
	return queries, nil
}
