package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/duckfetch/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one report.
func (w *MarkdownWriter) Write(report *model.SearchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")
	w.writeReport(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs a summary of the batch followed by every report.
func (w *MarkdownWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	reports = nonNil(reports)
	md := markdown.NewMarkdown(w.output)

	md.H1("Batch Search Results")
	md.PlainText("")
	w.writeBatchSummary(md, reports)

	for _, report := range reports {
		md.H2(report.Query.Text)
		md.PlainText("")
		w.writeReport(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.SearchReport) {
	proxy := report.Proxy
	if proxy == "" {
		proxy = "direct"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + escapeCell(report.Query.Text) + "`"},
			{"Region", regionLabel(report.Query.Region)},
			{"Time Range", report.Query.TimeRange.String()},
			{"Searched At", report.SearchedAt.Format("2006-01-02 15:04:05 MST")},
			{"Attempts", strconv.Itoa(report.Attempts)},
			{"Proxy", "`" + proxy + "`"},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")

	if report.Failed() {
		md.Warningf("Search failed after %d attempt(s): %s", report.Attempts, report.Error)
		md.PlainText("")
		return
	}

	if len(report.Results) == 0 {
		md.Note("No results found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		snippet := r.Snippet
		if snippet == "" {
			snippet = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("[%s](%s)", escapeCell(r.Title), r.URL),
			escapeCell(truncateString(snippet, 120)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Result", "Snippet"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeBatchSummary(md *markdown.Markdown, reports []*model.SearchReport) {
	rows := make([][]string, len(reports))
	failed := 0
	for i, r := range reports {
		if r.Failed() {
			failed++
		}
		rows[i] = []string{
			escapeCell(r.Query.Text),
			strconv.Itoa(len(r.Results)),
			strconv.Itoa(r.Attempts),
			statusText(r),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Query", "Results", "Attempts", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, reports)

	if failed > 0 {
		md.Warningf("%d of %d searches failed.", failed, len(reports))
	} else {
		md.Tip("All searches completed.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of results per query.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, reports []*model.SearchReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Results per Query"),
		piechart.WithShowData(true),
	)

	labeled := 0
	for _, r := range reports {
		if len(r.Results) == 0 {
			continue
		}
		chart.LabelAndIntValue(r.Query.Text, uint64(len(r.Results)))
		labeled++
	}
	if labeled == 0 {
		return
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [duckfetch](https://github.com/nao1215/duckfetch)*")
}

func statusText(report *model.SearchReport) string {
	if report.Failed() {
		return "❌ Failed"
	}
	return "✅ " + strconv.Itoa(len(report.Results)) + " result(s)"
}

// escapeCell keeps table cells on one row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
