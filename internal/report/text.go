package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/duckfetch/internal/model"
)

// TextWriter outputs human-readable results for terminal display.
type TextWriter struct {
	baseWriter

	// verbose adds the search details (region, attempts, proxy, timing).
	verbose bool

	// hideSnippets omits snippet lines.
	hideSnippets bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables the search detail header.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// WithHideSnippets omits snippets from the output.
func WithHideSnippets(hide bool) TextWriterOption {
	return func(w *TextWriter) {
		w.hideSnippets = hide
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report.
func (w *TextWriter) Write(report *model.SearchReport) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, report)
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs each report under a separator line.
func (w *TextWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	var sb strings.Builder
	for i, report := range nonNil(reports) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Repeat("=", 70))
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "Query: %s\n", report.Query.Text)
		sb.WriteString(strings.Repeat("=", 70))
		sb.WriteString("\n\n")
		w.writeReport(&sb, report)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeReport(sb *strings.Builder, report *model.SearchReport) {
	if w.verbose {
		w.writeDetails(sb, report)
	}

	if report.Failed() {
		fmt.Fprintf(sb, "Search failed: %s\n", report.Error)
		return
	}

	if len(report.Results) == 0 {
		sb.WriteString("No results found.\n")
		return
	}

	for i, r := range report.Results {
		fmt.Fprintf(sb, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(sb, "   URL: %s\n", r.URL)
		if !w.hideSnippets {
			fmt.Fprintf(sb, "   Snippet: %s\n", r.Snippet)
		}
		sb.WriteString("\n")
	}
}

func (w *TextWriter) writeDetails(sb *strings.Builder, report *model.SearchReport) {
	proxy := report.Proxy
	if proxy == "" {
		proxy = "direct"
	}

	fmt.Fprintf(sb, "Query:       %s\n", report.Query.Text)
	fmt.Fprintf(sb, "Region:      %s\n", regionLabel(report.Query.Region))
	fmt.Fprintf(sb, "Time range:  %s\n", report.Query.TimeRange)
	fmt.Fprintf(sb, "Searched at: %s\n", report.SearchedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Attempts:    %d\n", report.Attempts)
	fmt.Fprintf(sb, "Proxy:       %s\n", proxy)
	fmt.Fprintf(sb, "Elapsed:     %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(sb, "Results:     %d\n", len(report.Results))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}
