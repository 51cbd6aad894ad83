package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	LayoutDate = "2006-01-02"
	LayoutTime = "15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseSchedule combines a YYYY-MM-DD date and HH:MM time in loc.
// A trailing ":SS" on the time is accepted.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.ParseInLocation(LayoutDate+" "+LayoutTime, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule %q %q: %w", date, clock, err)
	}
	return t, nil
}

// FormatSchedule renders a schedule the way receipts and messages show it.
func FormatSchedule(date, clock string) string {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return strings.TrimSpace(date + " " + clock)
}
