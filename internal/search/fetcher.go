package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/duckfetch/internal/extract"
	"github.com/nao1215/duckfetch/internal/model"
	"github.com/nao1215/duckfetch/internal/proxy"
)

const (
	// DefaultEndpoint is the DuckDuckGo lite search page.
	DefaultEndpoint = "https://duckduckgo.com/lite/"

	// DefaultTimeout bounds a single attempt, connection and body included.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodySize caps how much of a result page is read.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent is the browser User-Agent sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// DefaultHeaders returns the browser-like header set sent with every request.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", DefaultUserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Referer", "https://duckduckgo.com/")
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Origin", "https://html.duckduckgo.com")
	return h
}

// BuildParams returns the query string parameters for q.
// kl and df are only present when the query sets a region or time range.
func BuildParams(q model.SearchQuery) url.Values {
	params := url.Values{}
	params.Set("q", q.Text)
	if q.Region != "" {
		params.Set("kl", q.Region)
	}
	if q.TimeRange.IsSet() {
		params.Set("df", q.TimeRange.Code())
	}
	return params
}

// TransportFactory builds the round tripper used by one attempt.
// The zero Endpoint means a direct connection.
type TransportFactory func(ep proxy.Endpoint) (http.RoundTripper, error)

// defaultTransportFactory routes through proxy.NewTransport.
func defaultTransportFactory(ep proxy.Endpoint) (http.RoundTripper, error) {
	return proxy.NewTransport(ep)
}

// Fetcher runs searches against the lite endpoint.
// A Fetcher is safe for concurrent use; the attempts of one Search call
// run sequentially.
type Fetcher struct {
	ring         *proxy.Ring
	endpoint     string
	timeout      time.Duration
	headers      http.Header
	userAgent    string
	backoff      Backoff
	sleep        Sleeper
	logger       *slog.Logger
	extractor    *extract.Extractor
	newTransport TransportFactory
	maxBodySize  int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRing sets the proxy ring. Without one, every attempt connects directly.
func WithRing(ring *proxy.Ring) Option {
	return func(f *Fetcher) {
		if ring != nil {
			f.ring = ring
		}
	}
}

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(f *Fetcher) {
		f.endpoint = endpoint
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHeaders replaces the header set sent with every request.
// A nil header set restores DefaultHeaders.
func WithHeaders(h http.Header) Option {
	return func(f *Fetcher) {
		if h == nil {
			f.headers = DefaultHeaders()
			return
		}
		f.headers = h.Clone()
	}
}

// WithUserAgent replaces only the User-Agent header.
// It wins over any User-Agent in WithHeaders, whatever the option order.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithBackoff sets the delay policy between attempts.
func WithBackoff(b Backoff) Option {
	return func(f *Fetcher) {
		if b != nil {
			f.backoff = b
		}
	}
}

// WithSleeper sets how the fetcher waits between attempts.
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) {
		if s != nil {
			f.sleep = s
		}
	}
}

// WithLogger sets the logger. Failed attempts are logged at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithExtractor sets the result extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(f *Fetcher) {
		if e != nil {
			f.extractor = e
		}
	}
}

// WithTransportFactory overrides how per-attempt transports are built.
func WithTransportFactory(factory TransportFactory) Option {
	return func(f *Fetcher) {
		if factory != nil {
			f.newTransport = factory
		}
	}
}

// WithMaxBodySize caps the number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		ring:         proxy.NewRing(),
		endpoint:     DefaultEndpoint,
		timeout:      DefaultTimeout,
		headers:      DefaultHeaders(),
		backoff:      JitterBackoff(DefaultBackoffMin, DefaultBackoffMax, nil),
		sleep:        Sleep,
		logger:       slog.Default(),
		extractor:    extract.Default(),
		newTransport: defaultTransportFactory,
		maxBodySize:  DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}
	if f.userAgent != "" {
		f.headers.Set("User-Agent", f.userAgent)
	}

	return f
}

// outcome is what a search learned besides its results.
type outcome struct {
	attempts int
	proxy    proxy.Endpoint
}

// Search runs q and returns up to q.MaxResults results.
//
// Zero MaxResults and RetryLimit take their defaults. An invalid query is
// rejected before any request is made. When every attempt fails, the error
// is a *FetchError.
func (f *Fetcher) Search(ctx context.Context, q model.SearchQuery) (model.SearchResultSet, error) {
	results, _, err := f.search(ctx, q)
	return results, err
}

// SearchReport runs q and records the outcome instead of returning an error.
func (f *Fetcher) SearchReport(ctx context.Context, q model.SearchQuery) *model.SearchReport {
	report := model.NewSearchReport(q.WithDefaults())

	results, out, err := f.search(ctx, q)
	report.Elapsed = time.Since(report.SearchedAt)
	report.Attempts = out.attempts
	if !out.proxy.IsZero() {
		report.Proxy = out.proxy.Redacted()
	}
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.Results = results
	return report
}

func (f *Fetcher) search(ctx context.Context, q model.SearchQuery) (model.SearchResultSet, outcome, error) {
	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, outcome{}, fmt.Errorf("invalid query: %w", err)
	}

	params := BuildParams(q)
	var (
		out  outcome
		last *AttemptError
	)

	for attempt := 1; attempt <= q.RetryLimit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, out, &FetchError{Attempts: out.attempts, Last: last, Cause: err}
		}

		ep, _ := f.ring.Next()
		out.attempts = attempt
		out.proxy = ep

		body, status, err := f.fetch(ctx, ep, params)
		if err == nil {
			results := f.extractor.Extract(body, q.MaxResults)
			f.logger.Debug("search completed",
				"query", q.Text,
				"attempt", attempt,
				"proxy", proxyLabel(ep),
				"results", len(results),
			)
			return results, out, nil
		}

		last = &AttemptError{Attempt: attempt, Proxy: ep, StatusCode: status, Err: err}
		f.logger.Warn("search attempt failed",
			"query", q.Text,
			"attempt", attempt,
			"max_attempts", q.RetryLimit,
			"proxy", proxyLabel(ep),
			"error", err,
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, out, &FetchError{Attempts: attempt, Last: last, Cause: ctxErr}
		}

		if attempt < q.RetryLimit {
			if err := f.sleep(ctx, f.backoff()); err != nil {
				return nil, out, &FetchError{Attempts: attempt, Last: last, Cause: err}
			}
		}
	}

	return nil, out, &FetchError{Attempts: out.attempts, Last: last}
}

// proxyLabel names ep for logs without exposing credentials.
func proxyLabel(ep proxy.Endpoint) string {
	if ep.IsZero() {
		return ep.String()
	}
	return ep.Redacted()
}

// fetch performs one GET through ep and returns the body of a 2xx response.
func (f *Fetcher) fetch(ctx context.Context, ep proxy.Endpoint, params url.Values) (string, int, error) {
	target, err := url.Parse(f.endpoint)
	if err != nil {
		return "", 0, fmt.Errorf("invalid search endpoint %q: %w", f.endpoint, err)
	}
	target.RawQuery = params.Encode()

	transport, err := f.newTransport(ep)
	if err != nil {
		return "", 0, err
	}

	// A fresh client per attempt: no cookie jar, no connection reuse
	// across endpoints.
	client := &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = f.headers.Clone()

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Drain for reuse
		return "", resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}
