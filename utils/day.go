package utils

import "time"

// Day returns the calendar day t falls on in loc, as midnight UTC.
// Stored dates are always in this form so they compare equal across zones.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	a, b = Day(a, time.UTC), Day(b, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ParseDay parses a YYYY-MM-DD date and returns the instant that day starts in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
