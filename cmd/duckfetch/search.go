package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/duckfetch/internal/batch"
	"github.com/nao1215/duckfetch/internal/config"
	"github.com/nao1215/duckfetch/internal/history"
	"github.com/nao1215/duckfetch/internal/log"
	"github.com/nao1215/duckfetch/internal/model"
	"github.com/nao1215/duckfetch/internal/proxy"
	"github.com/nao1215/duckfetch/internal/report"
	"github.com/nao1215/duckfetch/internal/search"
	"github.com/nao1215/duckfetch/internal/tor"
	"github.com/spf13/cobra"
)

// errAllSearchesFailed is returned after the report is written when no
// search produced results.
var errAllSearchesFailed = errors.New("all searches failed")

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search DuckDuckGo",
		Long: `Search sends each query to the DuckDuckGo lite endpoint and prints the
organic results.

Every positional argument is a separate query. Several queries are
searched concurrently (see --batch) and reported together.

Failed attempts are retried up to --retries times. With --proxies, each
attempt goes through the next proxy of the list; with --tor, every attempt
goes through an embedded Tor daemon.

Examples:
  # Search once
  duckfetch search "golang context cancellation"

  # German results from the past week
  duckfetch search -r de-de -t week "wetter berlin"

  # Rotate through a proxy list and write a Markdown report
  duckfetch search -x proxies.txt -m -o report.md "first" "second"

  # Read one query per line from a file
  duckfetch search -q queries.txt --json

Configuration file (.duckfetch) example:
  defaults:
    region: us-en
    retries: 5
    timeout: 20s
    proxyFile: /etc/duckfetch/proxies.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("region", "r", "",
		"Region code sent as kl (e.g. us-en, de-de)")
	cmd.Flags().StringP("time", "t", "",
		"Restrict results to the past day, week, month or year")
	cmd.Flags().IntP("max-results", "n", model.DefaultMaxResults,
		"Maximum number of results per query")
	cmd.Flags().Int("retries", model.DefaultRetryLimit,
		"Attempts per query, including the first")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout of a single attempt")
	cmd.Flags().String("user-agent", "",
		"Override the User-Agent header")

	cmd.Flags().StringP("proxies", "x", "",
		"Proxy list file, one http/https/socks5 endpoint per line")
	cmd.Flags().Bool("tor", false,
		"Send every attempt through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	cmd.Flags().StringP("query-file", "q", "",
		"Read queries from a file, one per line (- for stdin)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of queries searched concurrently")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .duckfetch in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().Bool("no-snippets", false,
		"Omit snippets from text output")
	cmd.Flags().Bool("results-only", false,
		"Output only the JSON result list [{title, url, snippet}] (implies --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.Flags().Bool("no-history", false,
		"Do not record searches in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags the user actually set, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the implicit lookup may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	stringFlags := map[string]*string{
		"region":     &cfg.Region,
		"time":       &cfg.TimeRange,
		"user-agent": &cfg.UserAgent,
		"proxies":    &cfg.ProxyFile,
		"output":     &cfg.ReportFile,
		"db-dir":     &cfg.DBDir,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"max-results": &cfg.MaxResults,
		"retries":     &cfg.Retries,
		"batch":       &cfg.BatchSize,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	boolFlags := map[string]*bool{
		"tor":          &cfg.UseTor,
		"json":         &cfg.JSONReport,
		"markdown":     &cfg.MarkdownReport,
		"results-only": &cfg.ResultsOnly,
		"no-snippets":  &cfg.HideSnippets,
		"no-history":   &cfg.NoHistory,
	}
	for name, dst := range boolFlags {
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	// --tor replaces a proxy list that only came from the config file.
	if cfg.UseTor && !flags.Changed("proxies") {
		cfg.ProxyFile = ""
	}

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Queries = append(cfg.Queries, args...)
	queryFile, err := flags.GetString("query-file")
	if err != nil {
		return nil, err
	}
	if queryFile != "" {
		queries, err := readQueryFile(queryFile, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		cfg.Queries = append(cfg.Queries, queries...)
	}

	return cfg, nil
}

// readQueryFile reads one query per line. Blank lines and lines starting
// with # are skipped. The path "-" reads from stdin.
func readQueryFile(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // User-provided query file path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return queries, nil
}

// runSearch runs every configured query and writes the report to out.
// extra is appended to the fetcher options built from cfg.
func runSearch(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, extra ...search.Option) error {
	queries, err := cfg.SearchQueries()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	warnUnknownRegion(logger, cfg.Region)

	ring, cleanup, err := buildRing(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []search.Option{
		search.WithRing(ring),
		search.WithTimeout(cfg.Timeout),
		search.WithUserAgent(cfg.UserAgent),
		search.WithLogger(logger),
	}
	fetcher := search.New(append(opts, extra...)...)

	logger.Info("starting search",
		"queries", len(queries),
		"proxies", ring.Len(),
		"tor", cfg.UseTor,
	)

	var (
		reports  []*model.SearchReport
		batchErr error
	)
	if len(queries) == 1 {
		reports = []*model.SearchReport{fetcher.SearchReport(ctx, queries[0])}
	} else {
		processor := batch.NewProcessor(fetcher,
			batch.WithConcurrency(cfg.BatchSize),
			batch.WithLogger(logger),
		)
		reports, err = processor.Process(ctx, queries)
		if err != nil {
			// Searches that finished before the interruption are still
			// recorded and written.
			batchErr = fmt.Errorf("batch search interrupted: %w", err)
			reports = completedReports(reports)
			logger.Warn("batch search interrupted",
				"completed", len(reports),
				"total", len(queries),
			)
		}
	}

	if len(reports) > 0 {
		if !cfg.NoHistory {
			saveHistory(context.WithoutCancel(ctx), cfg.DBDir, reports, logger)
		}
		if err := outputReports(cfg, reports, out); err != nil {
			return err
		}
	}
	if batchErr != nil {
		return batchErr
	}

	for _, r := range reports {
		if !r.Failed() {
			return nil
		}
	}
	return errAllSearchesFailed
}

// warnUnknownRegion logs region codes whose language part is not a known
// language. The search still runs; DuckDuckGo owns the list of regions.
func warnUnknownRegion(logger *slog.Logger, region string) {
	if region == "" || strings.EqualFold(region, model.NoRegion) {
		return
	}
	if _, name, ok := model.RegionLanguage(region); ok {
		logger.Debug("region resolved", "region", region, "language", name)
		return
	}
	logger.Warn("unrecognized region code, sending it unchanged", "region", region)
}

// buildRing returns the proxy ring for cfg and a cleanup function.
// An unreadable proxy list is logged and the search continues directly.
func buildRing(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*proxy.Ring, func(), error) {
	noop := func() {}

	if cfg.UseTor {
		embeddedTor, endpoint, err := startEmbeddedTor(ctx, cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		return proxy.NewRing(endpoint), cleanup, nil
	}

	if cfg.ProxyFile == "" {
		return proxy.NewRing(), noop, nil
	}

	ring, err := proxy.LoadFile(cfg.ProxyFile)
	if err != nil {
		logger.Warn("proxy list unavailable, connecting directly", "error", err)
		return ring, noop, nil
	}
	if ring.Len() == 0 {
		logger.Warn("proxy list has no endpoints, connecting directly", "path", cfg.ProxyFile)
	}
	return ring, noop, nil
}

// startEmbeddedTor starts an embedded Tor daemon and returns its SOCKS5
// endpoint.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.EmbeddedTor, proxy.Endpoint, error) {
	logger.Warn("starting embedded Tor daemon, this may take 1-3 minutes")

	embeddedTor := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	endpoint, err := embeddedTor.Endpoint()
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, "", err
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)
	return embeddedTor, endpoint, nil
}

// saveHistory records reports in the history database. Failures are
// logged; history never fails a search.
func saveHistory(ctx context.Context, dbDir string, reports []*model.SearchReport, logger *slog.Logger) {
	store, err := history.Open(dbDir, history.DefaultOptions())
	if err != nil {
		logger.Warn("history unavailable", "dir", dbDir, "error", err)
		return
	}
	defer store.Close()

	for _, r := range reports {
		id, err := store.SaveSearch(ctx, r)
		if err != nil {
			logger.Warn("failed to save search", "query", r.Query.Text, "error", err)
			continue
		}
		logger.Debug("search saved", "id", id, "query", r.Query.Text)
	}
}

// completedReports drops the reports of searches that never ran.
func completedReports(reports []*model.SearchReport) []*model.SearchReport {
	done := make([]*model.SearchReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			done = append(done, r)
		}
	}
	return done
}

// outputReports writes reports in the configured format.
func outputReports(cfg *config.Config, reports []*model.SearchReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.ResultsOnly:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithResultsOnly())
	case cfg.JSONReport:
		writer = report.NewDocumentJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithHideSnippets(cfg.HideSnippets),
		)
	}

	var err error
	if len(reports) == 1 {
		_, err = writer.Write(reports[0])
	} else {
		_, err = writer.WriteBatch(reports)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
