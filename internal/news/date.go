package news

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned for timestamps in none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// Dates are timezone-naive wall clock values kept in time.UTC.
const (
	dateTimeLayout = "2006-01-02T15:04:05"
	microLayout    = "2006-01-02T15:04:05.000000"
	dayLayout      = "2006-01-02"
)

var parseLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dayLayout,
}

// ParseDate parses an ISO-8601 timestamp without a UTC offset.
// Fractional seconds are accepted. Timestamps carrying an offset keep their
// wall clock and lose the offset.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Naive(t), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders t without offset, with microseconds only when non-zero.
func FormatDate(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format(microLayout)
	}

	return t.Format(dateTimeLayout)
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t, nil
}

// Naive drops the location of t, keeping its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
