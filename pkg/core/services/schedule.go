package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// NextScheduledRun returns the first occurrence of an RRULE strictly after the given time.
// The rule is anchored at after truncated to the minute, so BYHOUR/BYMINUTE fix the
// time of day, unspecified fields inherit from the anchor, and runs land on :00 seconds.
func NextScheduledRun(rule string, after time.Time) (time.Time, error) {
	if rule == "" {
		return time.Time{}, errors.New("no match schedule configured")
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid match schedule: %w", err)
	}
	r.DTStart(after.Truncate(time.Minute))

	next := r.After(after, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("match schedule %q has no occurrence after %s", rule, after.Format(time.RFC3339))
	}

	return next, nil
}
