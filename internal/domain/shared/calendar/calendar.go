// Package calendar holds the date arithmetic shared by every agreement
// workflow that produces dated schedules.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// AddMonthsClamped advances date by n calendar months keeping the day of
// month. When that day does not exist in the target month the result is the
// last day of the target month, so 2024-01-31 + 1 gives 2024-02-29.
//
// time.AddDate normalizes overflow forward (Feb 31 becomes Mar 2). Stepping
// back to day 0 of the month it landed in yields the last day of the month
// before it, which is the intended target month since overflow never spans
// more than three days.
func AddMonthsClamped(date time.Time, n int) time.Time {
	shifted := date.AddDate(0, n, 0)
	if shifted.Day() != date.Day() {
		shifted = time.Date(shifted.Year(), shifted.Month(), 0,
			shifted.Hour(), shifted.Minute(), shifted.Second(), shifted.Nanosecond(), shifted.Location())
	}
	return shifted
}

// LastDayOfMonth returns the number of days in month of year
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD, falling back to RFC3339, into a UTC date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOnly(t), nil
}

// Format renders t as YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
