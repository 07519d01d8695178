package extract

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/nao1215/duckfetch/internal/model"
)

// Default selectors for the DuckDuckGo lite result page.
const (
	// DefaultCandidateSelector matches one result candidate.
	DefaultCandidateSelector = "tr"

	// DefaultLinkSelector matches the result link inside a candidate.
	DefaultLinkSelector = "a.result-link"

	// DefaultSnippetSelector matches the snippet inside a candidate.
	DefaultSnippetSelector = "td.result-snippet"
)

// ErrInvalidSelector is returned by New when a selector does not compile.
var ErrInvalidSelector = errors.New("invalid CSS selector")

// Extractor pulls search results out of a result page.
// It holds no state besides its selectors and is safe for concurrent use.
type Extractor struct {
	// candidate selects result candidates, in document order.
	candidate string

	// link selects the result link within a candidate.
	link string

	// snippet selects the snippet within a candidate.
	snippet string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCandidateSelector overrides DefaultCandidateSelector.
func WithCandidateSelector(selector string) Option {
	return func(e *Extractor) {
		e.candidate = selector
	}
}

// WithLinkSelector overrides DefaultLinkSelector.
func WithLinkSelector(selector string) Option {
	return func(e *Extractor) {
		e.link = selector
	}
}

// WithSnippetSelector overrides DefaultSnippetSelector.
func WithSnippetSelector(selector string) Option {
	return func(e *Extractor) {
		e.snippet = selector
	}
}

// New creates an Extractor and checks that every selector compiles.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		candidate: DefaultCandidateSelector,
		link:      DefaultLinkSelector,
		snippet:   DefaultSnippetSelector,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, selector := range []string{e.candidate, e.link, e.snippet} {
		if _, err := cascadia.Compile(selector); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
		}
	}
	return e, nil
}

// Default returns an Extractor using the default selectors.
func Default() *Extractor {
	return &Extractor{
		candidate: DefaultCandidateSelector,
		link:      DefaultLinkSelector,
		snippet:   DefaultSnippetSelector,
	}
}

// Extract parses document and returns at most maxResults results in
// document order. It never fails; a document that cannot be read yields
// an empty result set. The returned slice is never nil.
func (e *Extractor) Extract(document string, maxResults int) model.SearchResultSet {
	if maxResults <= 0 {
		return model.SearchResultSet{}
	}

	root, err := Parse(document)
	if err != nil {
		return model.SearchResultSet{}
	}
	return e.ExtractNode(root, maxResults)
}

// ExtractNode extracts results from an already parsed tree.
func (e *Extractor) ExtractNode(root Node, maxResults int) model.SearchResultSet {
	results := model.SearchResultSet{}
	if root == nil || maxResults <= 0 {
		return results
	}

	for _, candidate := range root.FindAll(e.candidate) {
		result, ok := e.extractCandidate(candidate)
		if !ok {
			continue
		}

		results = append(results, result)
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

// extractCandidate builds a result from one candidate.
// It returns false when the candidate has no link or the link lacks a
// title or URL.
func (e *Extractor) extractCandidate(candidate Node) (model.SearchResult, bool) {
	link, ok := candidate.FindFirst(e.link)
	if !ok {
		return model.SearchResult{}, false
	}

	href, _ := link.Attr("href")
	result := model.SearchResult{
		Title: link.Text(),
		URL:   href,
	}
	if snippet, ok := candidate.FindFirst(e.snippet); ok {
		result.Snippet = snippet.Text()
	}

	if !result.Valid() {
		return model.SearchResult{}, false
	}
	return result, true
}
