package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/duckfetch/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of searches run at once when no
// WithConcurrency option is given.
const DefaultConcurrency = 3

// Searcher runs one search and records its outcome.
// *search.Fetcher implements it.
type Searcher interface {
	SearchReport(ctx context.Context, q model.SearchQuery) *model.SearchReport
}

// Processor runs a batch of queries against one Searcher.
type Processor struct {
	searcher    Searcher
	concurrency int
	logger      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for batch-level events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent searches.
// Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor creates a Processor that runs queries through searcher.
func NewProcessor(searcher Searcher, opts ...Option) *Processor {
	p := &Processor{
		searcher:    searcher,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Process searches every query and returns one report per query, in input
// order. Failed searches are recorded in their report and do not affect the
// others. The error is non-nil only when ctx was cancelled; reports for
// queries that never started are nil in that case.
func (p *Processor) Process(ctx context.Context, queries []model.SearchQuery) ([]*model.SearchReport, error) {
	reports := make([]*model.SearchReport, len(queries))

	err := p.run(ctx, queries, func(report *model.SearchReport, index int) {
		// Each goroutine owns its own index.
		reports[index] = report
	})

	return reports, err
}

// ProcessWithCallback searches every query and calls callback as each
// search completes. callback runs on the goroutine that ran the search and
// must be safe for concurrent use.
func (p *Processor) ProcessWithCallback(
	ctx context.Context,
	queries []model.SearchQuery,
	callback func(report *model.SearchReport, index int),
) error {
	return p.run(ctx, queries, callback)
}

func (p *Processor) run(
	ctx context.Context,
	queries []model.SearchQuery,
	callback func(report *model.SearchReport, index int),
) error {
	p.logger.Info("starting batch search",
		"total_queries", len(queries),
		"concurrency", p.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, q := range queries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			p.logger.Debug("searching",
				"query", q.Text,
				"index", i+1,
				"total", len(queries),
			)

			report := p.searcher.SearchReport(ctx, q)
			callback(report, i)

			if report.Failed() {
				p.logger.Warn("search failed",
					"query", q.Text,
					"attempts", report.Attempts,
					"error", report.Error,
				)
				return nil
			}

			p.logger.Debug("search completed",
				"query", q.Text,
				"results", len(report.Results),
			)
			return nil
		})
	}

	err := g.Wait()

	p.logger.Info("batch search complete",
		"total_queries", len(queries),
		"elapsed", time.Since(startTime),
	)

	return err
}
