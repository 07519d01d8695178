package model

import "time"

// SearchReport records one search call and its outcome.
// It is what report writers render and what the history store persists.
type SearchReport struct {
	// Query is the query that was searched.
	Query SearchQuery `json:"query"`

	// Results holds the extracted results. Empty when the search failed.
	Results SearchResultSet `json:"results"`

	// Attempts is the number of HTTP attempts made.
	Attempts int `json:"attempts"`

	// Proxy is the redacted proxy endpoint used by the last attempt.
	// Empty for a direct connection.
	Proxy string `json:"proxy,omitempty"`

	// Error is the failure message when the search failed.
	Error string `json:"error,omitempty"`

	// SearchedAt is when the search started.
	SearchedAt time.Time `json:"searched_at"`

	// Elapsed is the wall-clock duration of the search, retries included.
	Elapsed time.Duration `json:"elapsed"`
}

// NewSearchReport creates a report for q with SearchedAt set to now.
func NewSearchReport(q SearchQuery) *SearchReport {
	return &SearchReport{
		Query:      q,
		Results:    SearchResultSet{},
		SearchedAt: time.Now(),
	}
}

// Failed reports whether the search ended with an error.
func (r *SearchReport) Failed() bool {
	return r.Error != ""
}
