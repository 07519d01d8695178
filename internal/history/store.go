package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/duckfetch/internal/model"
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "duckfetch.db"

// storedTimeFormat keeps a fixed width so timestamps sort lexically.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed search history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoDatabase, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		time_range TEXT NOT NULL DEFAULT '',
		max_results INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		proxy TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		result_count INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		searched_at TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_query ON searches(query);
	CREATE INDEX IF NOT EXISTS idx_searches_searched_at ON searches(searched_at);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		snippet TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_results_search ON results(search_id);
	CREATE INDEX IF NOT EXISTS idx_results_url ON results(url);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is the summary of one stored search.
type Entry struct {
	ID          int64
	Query       string
	Region      string
	TimeRange   model.TimeRange
	Attempts    int
	Proxy       string
	Error       string
	ResultCount int
	Elapsed     time.Duration
	SearchedAt  time.Time
}

// Failed reports whether the stored search ended with an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// SaveSearch stores report and its results and returns the new search ID.
func (s *Store) SaveSearch(ctx context.Context, report *model.SearchReport) (int64, error) {
	if report == nil {
		return 0, ErrNilReport
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO searches (query, region, time_range, max_results, attempts, proxy, error,
		result_count, elapsed_ms, searched_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Query.Text,
		report.Query.Region,
		string(report.Query.TimeRange),
		report.Query.MaxResults,
		report.Attempts,
		report.Proxy,
		report.Error,
		len(report.Results),
		report.Elapsed.Milliseconds(),
		report.SearchedAt.UTC().Format(storedTimeFormat),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save search: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read search id: %w", err)
	}

	for rank, r := range report.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (search_id, rank, title, url, snippet) VALUES (?, ?, ?, ?, ?)`,
			id, rank+1, r.Title, r.URL, r.Snippet,
		); err != nil {
			return 0, fmt.Errorf("failed to save result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit search: %w", err)
	}
	return id, nil
}

// List returns the most recent searches, newest first.
// A non-positive limit returns every search.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
	SELECT id, query, region, time_range, attempts, proxy, error, result_count, elapsed_ms, searched_at
	FROM searches
	ORDER BY searched_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			timeRange  string
			elapsedMS  int64
			searchedAt string
		)
		if err := rows.Scan(&e.ID, &e.Query, &e.Region, &timeRange, &e.Attempts, &e.Proxy,
			&e.Error, &e.ResultCount, &elapsedMS, &searchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		e.TimeRange = model.TimeRange(timeRange)
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		e.SearchedAt = parseTimestamp(searchedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Get returns the full report of the search with the given ID,
// or nil when no such search exists.
func (s *Store) Get(ctx context.Context, id int64) (*model.SearchReport, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM searches WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}

	var report model.SearchReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// FindByURL returns the searches whose results included url, newest first.
func (s *Store) FindByURL(ctx context.Context, url string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT s.id FROM searches s
	JOIN results r ON r.search_id = s.id
	WHERE r.url = ?
	ORDER BY s.searched_at DESC, s.id DESC
	`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to find searches: %w", err)
	}

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan search id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// The pool holds one connection, so rows must be closed before the
	// per-entry lookups below.
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.entry(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) entry(ctx context.Context, id int64) (Entry, error) {
	var (
		e          Entry
		timeRange  string
		elapsedMS  int64
		searchedAt string
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT id, query, region, time_range, attempts, proxy, error, result_count, elapsed_ms, searched_at
	FROM searches WHERE id = ?
	`, id).Scan(&e.ID, &e.Query, &e.Region, &timeRange, &e.Attempts, &e.Proxy,
		&e.Error, &e.ResultCount, &elapsedMS, &searchedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get search %d: %w", id, err)
	}
	e.TimeRange = model.TimeRange(timeRange)
	e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	e.SearchedAt = parseTimestamp(searchedAt)
	return e, nil
}

// Prune deletes searches older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC().Format(storedTimeFormat)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Commit

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM results WHERE search_id IN (SELECT id FROM searches WHERE searched_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM searches WHERE searched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune searches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return res.RowsAffected()
}

// timestampFormats lists the formats timestamps may be stored in,
// most specific first.
var timestampFormats = []string{
	storedTimeFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the first matching format,
// or returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
