package model

import (
	"errors"
	"testing"
)

// TestParseTimeRange tests conversion of user input into a TimeRange.
func TestParseTimeRange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected TimeRange
		wantErr  bool
	}{
		{"empty means any", "", TimeRangeAny, false},
		{"long day", "day", TimeRangeDay, false},
		{"code w", "w", TimeRangeWeek, false},
		{"uppercase month", "MONTH", TimeRangeMonth, false},
		{"padded code y", "  y ", TimeRangeYear, false},
		{"unknown value", "decade", TimeRangeAny, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimeRange(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTimeRange) {
					t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseTimeRange(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestTimeRangeCode tests the wire codes of each time range.
func TestTimeRangeCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		tr       TimeRange
		expected string
	}{
		{TimeRangeAny, ""},
		{TimeRangeDay, "d"},
		{TimeRangeWeek, "w"},
		{TimeRangeMonth, "m"},
		{TimeRangeYear, "y"},
		{TimeRange("fortnight"), ""},
	}

	for _, tc := range testCases {
		if got := tc.tr.Code(); got != tc.expected {
			t.Errorf("TimeRange(%q).Code() = %q, expected %q", tc.tr, got, tc.expected)
		}
	}

	if TimeRangeAny.IsSet() {
		t.Error("TimeRangeAny must not be set")
	}
	if TimeRangeAny.String() != "any" {
		t.Errorf("TimeRangeAny.String() = %q, expected %q", TimeRangeAny.String(), "any")
	}
}

// TestNewSearchQuery tests defaults and options.
func TestNewSearchQuery(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		q := NewSearchQuery("  golang  ")
		if q.Text != "golang" {
			t.Errorf("expected trimmed text, got %q", q.Text)
		}
		if q.MaxResults != DefaultMaxResults {
			t.Errorf("MaxResults = %d, expected %d", q.MaxResults, DefaultMaxResults)
		}
		if q.RetryLimit != DefaultRetryLimit {
			t.Errorf("RetryLimit = %d, expected %d", q.RetryLimit, DefaultRetryLimit)
		}
		if q.Region != "" || q.TimeRange.IsSet() {
			t.Errorf("expected no optional fields, got %+v", q)
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		q := NewSearchQuery("golang",
			WithRegion("us-en"),
			WithTimeRange(TimeRangeWeek),
			WithMaxResults(5),
			WithRetryLimit(2),
		)
		if q.Region != "us-en" || q.TimeRange != TimeRangeWeek || q.MaxResults != 5 || q.RetryLimit != 2 {
			t.Errorf("options not applied: %+v", q)
		}
	})

	t.Run("WithDefaults fills zero values only", func(t *testing.T) {
		t.Parallel()

		q := SearchQuery{Text: "x", MaxResults: 4}.WithDefaults()
		if q.MaxResults != 4 {
			t.Errorf("MaxResults = %d, expected 4", q.MaxResults)
		}
		if q.RetryLimit != DefaultRetryLimit {
			t.Errorf("RetryLimit = %d, expected %d", q.RetryLimit, DefaultRetryLimit)
		}
	})
}

// TestSearchQueryValidate tests query validation.
func TestSearchQueryValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		query   SearchQuery
		wantErr error
	}{
		{"valid query", NewSearchQuery("golang"), nil},
		{"empty text", NewSearchQuery("   "), ErrEmptyQuery},
		{"zero max results", NewSearchQuery("golang", WithMaxResults(0)), ErrInvalidMaxResults},
		{"negative retry limit", NewSearchQuery("golang", WithRetryLimit(-1)), ErrInvalidRetryLimit},
		{"unknown time range", NewSearchQuery("golang", WithTimeRange("decade")), ErrInvalidTimeRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.query.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}
