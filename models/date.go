package models

import "time"

// DateLayout is the wire format for calendar dates (birthdays, conversation dates).
const DateLayout = "2006-01-02"

// CivilDate drops the clock part of t, keeping the calendar day as seen in t's
// location, and returns it as midnight UTC. All stored dates use this form.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
