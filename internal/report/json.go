package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/duckfetch/internal/model"
)

// JSONWriter outputs reports as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent bool

	indentPrefix string
	indentString string

	// resultsOnly writes only the result list of each report.
	resultsOnly bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithResultsOnly writes the bare result list ([{title, url, snippet}])
// instead of the full report.
func WithResultsOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.resultsOnly = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report.
func (w *JSONWriter) Write(report *model.SearchReport) (int, error) {
	if w.resultsOnly {
		return w.writeJSON(report.Results)
	}
	return w.writeJSON(report)
}

// WriteBatch outputs the reports as a JSON array.
func (w *JSONWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	reports = nonNil(reports)
	if w.resultsOnly {
		sets := make([]model.SearchResultSet, len(reports))
		for i, r := range reports {
			sets[i] = r.Results
		}
		return w.writeJSON(sets)
	}
	return w.writeJSON(reports)
}

// writeJSON marshals v and writes it followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONDocument wraps reports with metadata about the run that produced them.
type JSONDocument struct {
	// Version is the duckfetch version that produced the document.
	Version string `json:"version"`

	// GeneratedAt is when the document was written.
	GeneratedAt time.Time `json:"generated_at"`

	// Reports holds one entry per query.
	Reports []*model.SearchReport `json:"reports"`
}

// DocumentJSONWriter outputs reports wrapped in a JSONDocument.
type DocumentJSONWriter struct {
	*JSONWriter

	version string
	now     func() time.Time
}

// NewDocumentJSONWriter creates a writer that wraps reports with version
// information.
func NewDocumentJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *DocumentJSONWriter {
	return &DocumentJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
		now:        time.Now,
	}
}

// Write outputs a document holding one report.
func (w *DocumentJSONWriter) Write(report *model.SearchReport) (int, error) {
	return w.WriteBatch([]*model.SearchReport{report})
}

// WriteBatch outputs a document holding every report.
func (w *DocumentJSONWriter) WriteBatch(reports []*model.SearchReport) (int, error) {
	return w.writeJSON(&JSONDocument{
		Version:     w.version,
		GeneratedAt: w.now().UTC(),
		Reports:     nonNil(reports),
	})
}
