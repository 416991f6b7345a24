// Package calendar converts between instants and the local-day keys used to
// bucket meals, workouts and score days.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the format of a day key.
const Layout = "2006-01-02"

// Day returns the day key of t in loc. A nil loc means time.Local.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(Layout)
}

// Parse validates a day key and returns midnight of that day in loc.
func Parse(day string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(Layout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", day, err)
	}
	return t, nil
}

// AddDays shifts a day key by n calendar days. Invalid keys are returned
// unchanged.
func AddDays(day string, n int) string {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// Yesterday returns the day key before now in loc.
func Yesterday(now time.Time, loc *time.Location) string {
	return AddDays(Day(now, loc), -1)
}
