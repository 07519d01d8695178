package model

import (
	"fmt"
	"strings"
)

// Default values applied by NewSearchQuery and SearchQuery.WithDefaults.
const (
	// DefaultMaxResults is the number of results returned when the caller
	// does not ask for a specific count.
	DefaultMaxResults = 10

	// DefaultRetryLimit is the number of attempts made before a search fails.
	DefaultRetryLimit = 3
)

// TimeRange restricts results to a recent period.
// The zero value means no restriction.
type TimeRange string

const (
	// TimeRangeAny applies no recency filter. The df parameter is omitted.
	TimeRangeAny TimeRange = ""

	// TimeRangeDay restricts results to the past day.
	TimeRangeDay TimeRange = "day"

	// TimeRangeWeek restricts results to the past week.
	TimeRangeWeek TimeRange = "week"

	// TimeRangeMonth restricts results to the past month.
	TimeRangeMonth TimeRange = "month"

	// TimeRangeYear restricts results to the past year.
	TimeRangeYear TimeRange = "year"
)

// ParseTimeRange converts user input into a TimeRange.
// It accepts the long names (day, week, month, year) and the single letter
// codes used on the wire (d, w, m, y), case-insensitively. An empty string
// yields TimeRangeAny.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TimeRangeAny, nil
	case "d", "day":
		return TimeRangeDay, nil
	case "w", "week":
		return TimeRangeWeek, nil
	case "m", "month":
		return TimeRangeMonth, nil
	case "y", "year":
		return TimeRangeYear, nil
	default:
		return TimeRangeAny, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
}

// Code returns the df parameter value for the time range,
// or an empty string for TimeRangeAny and unknown values.
func (t TimeRange) Code() string {
	switch t {
	case TimeRangeDay:
		return "d"
	case TimeRangeWeek:
		return "w"
	case TimeRangeMonth:
		return "m"
	case TimeRangeYear:
		return "y"
	default:
		return ""
	}
}

// IsSet reports whether the time range restricts results.
func (t TimeRange) IsSet() bool {
	return t != TimeRangeAny
}

// valid reports whether t is one of the known values, including TimeRangeAny.
func (t TimeRange) valid() bool {
	return t == TimeRangeAny || t.Code() != ""
}

// String returns the long name of the time range, or "any".
func (t TimeRange) String() string {
	if t == TimeRangeAny {
		return "any"
	}
	return string(t)
}

// SearchQuery describes one search call.
// It is passed by value and never modified by the fetcher.
type SearchQuery struct {
	// Text is the query string sent as the q parameter. Required.
	Text string `json:"text" yaml:"text"`

	// Region is a DuckDuckGo region code such as "us-en" or "de-de".
	// Empty means no region; the kl parameter is then omitted.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// TimeRange is the optional recency filter sent as the df parameter.
	TimeRange TimeRange `json:"time_range,omitempty" yaml:"timeRange,omitempty"`

	// MaxResults caps the number of results returned.
	MaxResults int `json:"max_results" yaml:"maxResults"`

	// RetryLimit is the maximum number of attempts, including the first one.
	RetryLimit int `json:"retry_limit" yaml:"retryLimit"`
}

// QueryOption configures a SearchQuery built by NewSearchQuery.
type QueryOption func(*SearchQuery)

// WithRegion sets the region code.
func WithRegion(region string) QueryOption {
	return func(q *SearchQuery) {
		q.Region = strings.TrimSpace(region)
	}
}

// WithTimeRange sets the recency filter.
func WithTimeRange(t TimeRange) QueryOption {
	return func(q *SearchQuery) {
		q.TimeRange = t
	}
}

// WithMaxResults sets the result cap.
func WithMaxResults(n int) QueryOption {
	return func(q *SearchQuery) {
		q.MaxResults = n
	}
}

// WithRetryLimit sets the number of attempts.
func WithRetryLimit(n int) QueryOption {
	return func(q *SearchQuery) {
		q.RetryLimit = n
	}
}

// NewSearchQuery builds a SearchQuery with DefaultMaxResults and
// DefaultRetryLimit, then applies opts. The result is not validated.
func NewSearchQuery(text string, opts ...QueryOption) SearchQuery {
	q := SearchQuery{
		Text:       strings.TrimSpace(text),
		MaxResults: DefaultMaxResults,
		RetryLimit: DefaultRetryLimit,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// WithDefaults returns a copy of q where zero MaxResults and RetryLimit
// are replaced by their defaults.
func (q SearchQuery) WithDefaults() SearchQuery {
	if q.MaxResults == 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.RetryLimit == 0 {
		q.RetryLimit = DefaultRetryLimit
	}
	return q
}

// Validate checks that the query can be sent.
// It returns the first problem found.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}
	if q.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}
	if q.RetryLimit <= 0 {
		return ErrInvalidRetryLimit
	}
	if !q.TimeRange.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimeRange, string(q.TimeRange))
	}
	return nil
}
