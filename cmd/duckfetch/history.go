package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/duckfetch/internal/config"
	"github.com/nao1215/duckfetch/internal/history"
	"github.com/nao1215/duckfetch/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past searches",
		Long: `History lists the searches recorded in the local history database,
newest first.

Examples:
  # Last 20 searches
  duckfetch history

  # Results of search 42
  duckfetch history --show 42

  # Searches that returned a given URL
  duckfetch history --url https://go.dev/

  # Forget searches older than 30 days
  duckfetch history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit,
		"Maximum number of searches to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().Int64("show", 0,
		"Print the stored results of the search with this ID")
	cmd.Flags().String("url", "",
		"List searches whose results included this URL")
	cmd.Flags().Duration("prune", 0,
		"Delete searches older than this duration")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyEntry is the JSON form of history.Entry.
type historyEntry struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	Region      string    `json:"region,omitempty"`
	TimeRange   string    `json:"time_range,omitempty"`
	Attempts    int       `json:"attempts"`
	Proxy       string    `json:"proxy,omitempty"`
	Error       string    `json:"error,omitempty"`
	ResultCount int       `json:"result_count"`
	ElapsedMS   int64     `json:"elapsed_ms"`
	SearchedAt  time.Time `json:"searched_at"`
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	store, err := history.Open(dbDir, history.Options{EnableWAL: true})
	if errors.Is(err, history.ErrNoDatabase) {
		fmt.Fprintln(out, "No searches recorded yet.")
		fmt.Fprintln(out, "\nUse 'duckfetch search <query>' to run a search.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	if prune, err := flags.GetDuration("prune"); err != nil {
		return err
	} else if prune > 0 {
		removed, err := store.Prune(ctx, prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d searches older than %s.\n", removed, prune)
		return nil
	}

	if id, err := flags.GetInt64("show"); err != nil {
		return err
	} else if id > 0 {
		return showSearch(ctx, store, id, jsonOutput, out)
	}

	url, err := flags.GetString("url")
	if err != nil {
		return err
	}
	var entries []history.Entry
	if url != "" {
		entries, err = store.FindByURL(ctx, url)
	} else {
		limit, lerr := flags.GetInt("limit")
		if lerr != nil {
			return lerr
		}
		entries, err = store.List(ctx, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeHistoryJSON(out, entries)
	}
	writeHistoryTable(out, entries)
	return nil
}

// showSearch prints one stored report.
func showSearch(ctx context.Context, store *history.Store, id int64, jsonOutput bool, out io.Writer) error {
	stored, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("no search with ID %d", id)
	}

	var writer report.Writer = report.NewTextWriter(out, report.WithVerbose(true))
	if jsonOutput {
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	}
	_, err = writer.Write(stored)
	return err
}

func writeHistoryJSON(out io.Writer, entries []history.Entry) error {
	items := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, historyEntry{
			ID:          e.ID,
			Query:       e.Query,
			Region:      e.Region,
			TimeRange:   string(e.TimeRange),
			Attempts:    e.Attempts,
			Proxy:       e.Proxy,
			Error:       e.Error,
			ResultCount: e.ResultCount,
			ElapsedMS:   e.Elapsed.Milliseconds(),
			SearchedAt:  e.SearchedAt,
		})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(items)
}

func writeHistoryTable(out io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No searches found.")
		return
	}

	fmt.Fprintf(out, "Search history (%d searches):\n\n", len(entries))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %s\n", "ID", "Date", "Results", "Query")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, e := range entries {
		results := fmt.Sprintf("%d", e.ResultCount)
		if e.Failed() {
			results = "failed"
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %-8s  %s\n",
			e.ID,
			e.SearchedAt.Local().Format("2006-01-02 15:04:05"),
			results,
			e.Query,
		)
	}

	fmt.Fprintln(out, "\nUse 'duckfetch history --show <id>' to see the results of a search.")
}
