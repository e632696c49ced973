package model

import "time"

// DateLayout is the calendar date format used for WFA dates in CLI, API and log output
const DateLayout = "2006-01-02"

// Date normalizes a timestamp to midnight UTC of its calendar day
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
