// Package dates provides the pure calendar arithmetic used by recurrence
// expansion. Everything here works on day-granular dates in UTC; the current
// day is injected through Clock so callers stay deterministic under test.
package dates

import "time"

// Clock supplies the current date. Production code uses SystemClock; tests
// inject a fixed date.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock, truncated to the current UTC day.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return Day(time.Now().UTC())
}

// Fixed returns a Clock that always reports the given date.
func Fixed(t time.Time) Clock {
	return fixedClock(Day(t))
}

type fixedClock time.Time

func (c fixedClock) Today() time.Time { return time.Time(c) }

// Day normalizes a timestamp to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddUnits advances date by interval steps of the given recurrence kind.
// Monthly and yearly steps use calendar arithmetic with the day-of-month
// clamped to the target month's length, so a template anchored on the 31st
// lands on Feb 28/29 rather than spilling into March.
func AddUnits(date time.Time, kind string, interval int) time.Time {
	switch kind {
	case "weekly":
		return date.AddDate(0, 0, 7*interval)
	case "monthly":
		return addMonths(date, interval)
	case "yearly":
		return addMonths(date, 12*interval)
	default: // daily
		return date.AddDate(0, 0, interval)
	}
}

// Before reports whether a falls strictly before b at day granularity.
func Before(a, b time.Time) bool {
	return Day(a).Before(Day(b))
}

// SameOrBefore reports whether a falls on or before b at day granularity.
func SameOrBefore(a, b time.Time) bool {
	return !Day(a).After(Day(b))
}

func addMonths(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	target := first.AddDate(0, n, 0)
	if max := daysInMonth(target.Month(), target.Year()); d > max {
		d = max
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
