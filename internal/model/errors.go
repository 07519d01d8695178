package model

import "errors"

// Query validation errors returned by SearchQuery.Validate.
var (
	// ErrEmptyQuery is returned when the query text is empty or whitespace only.
	ErrEmptyQuery = errors.New("query text must not be empty")

	// ErrInvalidMaxResults is returned when MaxResults is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidRetryLimit is returned when RetryLimit is not positive.
	ErrInvalidRetryLimit = errors.New("invalid retry limit: must be positive")

	// ErrInvalidTimeRange is returned for a time range outside day, week, month and year.
	ErrInvalidTimeRange = errors.New("invalid time range: expected day, week, month or year")
)
