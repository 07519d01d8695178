// Package model defines the data structures shared by the duckfetch packages.
//
// This package contains the following main types:
//   - SearchQuery: The immutable description of one search call
//   - TimeRange: The optional recency filter of a query
//   - SearchResult: One extracted result (title, URL, snippet)
//   - SearchResultSet: The ordered results of one search call
//   - SearchReport: A search call together with its outcome, used by report
//     writers and the history store
//
// The models live in their own package so that extract, search, report and
// history can all depend on them without import cycles. Result types are
// serializable to JSON.
package model
