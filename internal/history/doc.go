// Package history stores past searches in a local SQLite database.
//
// Every search run from the CLI is recorded with its query, outcome and
// extracted results. The store is write-mostly audit data: it backs the
// "history" command and is never consulted to answer a search.
//
// The database lives at $XDG_DATA_HOME/duckfetch/duckfetch.db by default
// and uses modernc.org/sqlite, a CGO-free driver.
package history
