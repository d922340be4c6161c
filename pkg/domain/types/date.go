package types

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the ISO-8601 calendar date layout used by date fields
const DateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date into midnight UTC. Full RFC 3339
// timestamps are accepted and truncated to their calendar date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid date", goerr.V("date", s))
	}
	return DateOf(t), nil
}

// DateOf returns midnight UTC of the calendar date of t in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as an ISO-8601 calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole days from a to b, truncated toward zero.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
