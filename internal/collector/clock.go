package collector

import (
	"fmt"
	"time"
)

// Calendar computes collection dates in the site's timezone
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

// NewCalendar returns a wall-clock calendar for the named timezone
func NewCalendar(timezone string) (Calendar, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Calendar{Now: time.Now, Location: loc}, nil
}

// FixedCalendar always reports t. Used for backfills and tests.
func FixedCalendar(t time.Time) Calendar {
	return Calendar{Now: func() time.Time { return t }, Location: t.Location()}
}

// Day returns the local calendar day n days before today, at midnight
func (c Calendar) Day(daysAgo int) time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	t := now().In(loc)
	return time.Date(t.Year(), t.Month(), t.Day()-daysAgo, 0, 0, 0, 0, loc)
}

// Date formats Day(daysAgo) as YYYY-MM-DD
func (c Calendar) Date(daysAgo int) string {
	return c.Day(daysAgo).Format(time.DateOnly)
}
