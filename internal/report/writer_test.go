package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/duckfetch/internal/model"
)

// createTestReport creates a successful report with two results.
func createTestReport() *model.SearchReport {
	report := model.NewSearchReport(model.NewSearchQuery("golang generics",
		model.WithRegion("us-en"),
		model.WithTimeRange(model.TimeRangeWeek),
	))
	report.SearchedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	report.Attempts = 2
	report.Proxy = "socks5://127.0.0.1:1080"
	report.Elapsed = 1234 * time.Millisecond
	report.Results = model.SearchResultSet{
		{Title: "Tutorial: Getting started with generics", URL: "https://go.dev/doc/tutorial/generics", Snippet: "Generics let you write code that works with a set of types."},
		{Title: "Type parameters | proposal", URL: "https://go.googlesource.com/proposal", Snippet: ""},
	}
	return report
}

// createFailedReport creates a report for a search that exhausted its retries.
func createFailedReport() *model.SearchReport {
	report := model.NewSearchReport(model.NewSearchQuery("unreachable"))
	report.Attempts = 3
	report.Error = "all 3 attempts failed, last error: attempt 3 via direct connection: timeout"
	return report
}

// TestTextWriter tests the human-readable writer.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes numbered results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("returned %d bytes, buffer holds %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"1. Tutorial: Getting started with generics",
			"   URL: https://go.dev/doc/tutorial/generics\n   Snippet: Generics let you write code",
			"2. Type parameters | proposal\n   URL: https://go.googlesource.com/proposal\n   Snippet: \n\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "Attempts:") {
			t.Error("details must only be shown in verbose mode")
		}
	})

	t.Run("verbose shows search details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Region:      us-en (English)", "Time range:  week", "Attempts:    2", "socks5://127.0.0.1:1080", "Elapsed:     1.234s"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("hides snippets", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithHideSnippets(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Generics let you") || strings.Contains(buf.String(), "Snippet:") {
			t.Error("expected snippet to be hidden")
		}
	})

	t.Run("failed and empty searches", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTextWriter(&buf)
		if _, err := w.Write(createFailedReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Search failed: all 3 attempts failed") {
			t.Errorf("expected failure message, got %q", buf.String())
		}

		buf.Reset()
		if _, err := w.Write(model.NewSearchReport(model.NewSearchQuery("nothing"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No results found.") {
			t.Errorf("expected empty message, got %q", buf.String())
		}
	})

	t.Run("batch separates queries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		reports := []*model.SearchReport{createTestReport(), nil, createFailedReport()}
		if _, err := NewTextWriter(&buf).WriteBatch(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Count(output, "Query: ") != 2 {
			t.Errorf("expected 2 query headers\n%s", output)
		}
		if strings.Index(output, "golang generics") > strings.Index(output, "unreachable") {
			t.Error("expected input order to be kept")
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes full report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.SearchReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Query.Text != "golang generics" || len(decoded.Results) != 2 || decoded.Attempts != 2 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("results only uses title url snippet keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithResultsOnly()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []map[string]string
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a JSON array of objects: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 results, got %d", len(decoded))
		}
		for _, key := range []string{"title", "url", "snippet"} {
			if _, ok := decoded[0][key]; !ok {
				t.Errorf("missing key %q in %v", key, decoded[0])
			}
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"query\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("batch writes an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteBatch([]*model.SearchReport{createTestReport(), createFailedReport()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []model.SearchReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not a JSON array: %v", err)
		}
		if len(decoded) != 2 || decoded[1].Error == "" {
			t.Errorf("unexpected batch: %+v", decoded)
		}
	})

	t.Run("document wraps reports with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewDocumentJSONWriter(&buf, "v1.2.3")
		w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc JSONDocument
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not a JSON document: %v", err)
		}
		if doc.Version != "v1.2.3" || len(doc.Reports) != 1 {
			t.Errorf("unexpected document: %+v", doc)
		}
		if !doc.GeneratedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
			t.Errorf("GeneratedAt = %v", doc.GeneratedAt)
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes result table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Search Results",
			"Tutorial: Getting started with generics",
			"(https://go.dev/doc/tutorial/generics)",
			"proposal",
			"us-en (English)",
			"Generated by",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("failed search shows warning", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createFailedReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Errorf("expected warning alert\n%s", buf.String())
		}
	})

	t.Run("batch includes summary and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		reports := []*model.SearchReport{createTestReport(), createFailedReport()}
		if _, err := NewMarkdownWriter(&buf).WriteBatch(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Batch Search Results", "```mermaid", "## golang generics", "## unreachable", "1 of 2 searches failed"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(*model.SearchReport) (int, error) {
	return 0, errors.New("disk full")
}

func (failingWriter) WriteBatch([]*model.SearchReport) (int, error) {
	return 0, errors.New("disk full")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
		if n != text.Len()+js.Len() {
			t.Errorf("returned %d bytes, expected %d", n, text.Len()+js.Len())
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewTextWriter(&after))
		if _, err := mw.WriteBatch([]*model.SearchReport{createTestReport()}); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

// TestTruncateString tests rune-aware truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 10, "this is..."},
		{"日本語のテキスト", 5, "日本..."},
		{"abc", 2, "ab"},
	}

	for _, tc := range testCases {
		if got := truncateString(tc.input, tc.maxLen); got != tc.expected {
			t.Errorf("truncateString(%q, %d) = %q, expected %q", tc.input, tc.maxLen, got, tc.expected)
		}
	}
}
