package report

import (
	"io"

	"github.com/nao1215/duckfetch/internal/model"
)

// Writer renders search reports to an output.
type Writer interface {
	// Write outputs a single report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SearchReport) (int, error)

	// WriteBatch outputs the reports of a batch search, in order.
	WriteBatch(reports []*model.SearchReport) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer.
// It stops at the first error.
func (m *MultiWriter) Write(report *model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the reports to every Writer.
func (m *MultiWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// regionLabel describes a region code, with its language name when known.
func regionLabel(code string) string {
	if code == "" {
		return "any"
	}
	if _, name, ok := model.RegionLanguage(code); ok {
		return code + " (" + name + ")"
	}
	return code
}

// nonNil drops nil entries left by a cancelled batch.
func nonNil(reports []*model.SearchReport) []*model.SearchReport {
	out := make([]*model.SearchReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
