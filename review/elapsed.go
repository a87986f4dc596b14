package review

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	daysPerYear = 365.25

	// Largest day count an elapsed time may span.
	maxElapsedDays = 999999999

	minYear = 1
	maxYear = 9999
)

// ResolveElapsed converts an elapsed-time string such as "3 days" or
// "2 years" into the calendar date (YYYY-MM-DD) that lies that far before
// now. The first token is the magnitude and the last token must contain
// "day" or "year"; anything else yields false. Unit matching ignores case,
// so "3 Days" resolves too.
//
// Fractional days are rounded up, so "2 years" (730.5 days) before
// 2024-01-10 is 2022-01-09. Spans beyond maxElapsedDays and dates outside
// years 1 through 9999 yield false.
func ResolveElapsed(elapsed string, now time.Time) (string, bool) {
	tokens := strings.Fields(elapsed)
	if len(tokens) == 0 {
		return "", false
	}

	magnitude, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return "", false
	}

	var days float64
	unit := strings.ToLower(tokens[len(tokens)-1])
	switch {
	case strings.Contains(unit, "year"):
		days = magnitude * daysPerYear
	case strings.Contains(unit, "day"):
		days = magnitude
	default:
		return "", false
	}

	if math.Abs(days) > maxElapsedDays {
		return "", false
	}

	y, m, d := now.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -int(math.Ceil(days)))
	if date.Year() < minYear || date.Year() > maxYear {
		return "", false
	}
	return date.Format(time.DateOnly), true
}
