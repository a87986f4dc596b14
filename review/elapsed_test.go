package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveElapsed(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed string
		want    string
		wantOK  bool
	}{
		{"days", "3 days", "2024-01-07", true},
		{"single day", "1 day", "2024-01-09", true},
		{"zero days", "0 days", "2024-01-10", true},
		{"fractional day rounds up", "1.5 days", "2024-01-08", true},
		{"years with half day rounds up", "2 years", "2022-01-09", true},
		{"single year", "1 year", "2023-01-09", true},
		{"whole days in four years", "4 years", "2020-01-10", true},
		{"extra whitespace", "  3   days ", "2024-01-07", true},
		{"capitalized unit", "3 Days", "2024-01-07", true},
		{"unknown unit", "5 widgets", "", false},
		{"months are not supported", "2 months", "", false},
		{"bad magnitude", "a few days", "", false},
		{"nan magnitude", "NaN days", "", false},
		{"infinite magnitude", "Inf days", "", false},
		{"huge years", "1e300 years", "", false},
		{"huge days", "1e18 days", "", false},
		{"days past int range", "9e15 days", "", false},
		{"huge negative days", "-1e300 days", "", false},
		{"span over day limit", "1000000000 days", "", false},
		{"before year one", "8000 years", "", false},
		{"after year 9999", "-8000 years", "", false},
		{"future date", "-3 days", "2024-01-13", true},
		{"earliest date", "738894 days", "0001-01-01", true},
		{"single token", "3", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveElapsed(tt.elapsed, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestResolveElapsed_IgnoresTimeOfDay verifies only the calendar date of now
// is used
func TestResolveElapsed_IgnoresTimeOfDay(t *testing.T) {
	early := time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC)
	late := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)

	a, ok := ResolveElapsed("1 day", early)
	assert.True(t, ok)
	b, ok := ResolveElapsed("1 day", late)
	assert.True(t, ok)

	assert.Equal(t, "2024-02-29", a)
	assert.Equal(t, a, b)
}

func TestRecordReviewDate(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	date, ok := Record{FieldSinceReview: "3 days"}.ReviewDate(now)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-07", date)

	_, ok = Record{FieldReviewID: "1"}.ReviewDate(now)
	assert.False(t, ok, "should not resolve without an age")
}
