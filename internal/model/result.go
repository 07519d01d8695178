package model

import "strings"

// SearchResult is one search hit extracted from a result page.
// Title and URL are always non-empty; Snippet may be empty.
type SearchResult struct {
	// Title is the visible text of the result link.
	Title string `json:"title"`

	// URL is the href of the result link, as found in the page.
	URL string `json:"url"`

	// Snippet is the short description shown under the link.
	Snippet string `json:"snippet"`
}

// Valid reports whether the result carries both a title and a URL.
func (r SearchResult) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.URL) != ""
}

// SearchResultSet is the ordered list of results of one search call,
// in the order the results first appear in the page.
type SearchResultSet []SearchResult

// Len returns the number of results.
func (s SearchResultSet) Len() int {
	return len(s)
}

// URLs returns the result URLs in order.
func (s SearchResultSet) URLs() []string {
	urls := make([]string, len(s))
	for i, r := range s {
		urls[i] = r.URL
	}
	return urls
}
