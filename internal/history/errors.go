package history

import "errors"

var (
	// ErrNoDatabase is returned by Open when the database does not exist
	// and CreateIfNotExists is false.
	ErrNoDatabase = errors.New("history database not found")

	// ErrNilReport is returned by SaveSearch for a nil report.
	ErrNilReport = errors.New("report must not be nil")
)
