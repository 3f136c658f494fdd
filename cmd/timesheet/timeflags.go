package main

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// parseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// If empty, defaultVal is returned.
func parseStart(val string, defaultVal time.Time) (time.Time, error) {
	if val == "" {
		return defaultVal, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.Parse(dayLayout, val); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", val)
}

// parseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// The date-only form is inclusive and becomes next-day 00:00 UTC.
func parseEnd(val string, defaultVal time.Time) (time.Time, error) {
	if val == "" {
		return defaultVal, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.Parse(dayLayout, val); err == nil {
		return d.AddDate(0, 0, 1), nil
	}
	return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", val)
}

// parseDay parses a calendar day, reading the date-only form in loc.
func parseDay(val string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dayLayout, val, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", val)
	}
	return d, nil
}
