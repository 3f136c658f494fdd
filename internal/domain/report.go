package domain

import "time"

// DateRange is an inclusive interval of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes start to the beginning of its day and end to the
// last instant of its day, both in loc.
func NewDateRange(start, end time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)
	return DateRange{
		Start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc),
	}
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// JobTotal is the time spent on one job type within a day.
type JobTotal struct {
	JobType string `json:"jobType"`
	Minutes int64  `json:"minutes"`
}

// ReportGroup holds the entries of a single calendar date.
type ReportGroup struct {
	Date         time.Time   `json:"date"`
	Entries      []TimeEntry `json:"entries"`
	TotalMinutes int64       `json:"totalMinutes"`
	Jobs         []JobTotal  `json:"jobs"`
}

// Summary totals a whole report.
type Summary struct {
	TotalEntries int   `json:"totalEntries"`
	TotalDays    int   `json:"totalDays"`
	TotalMinutes int64 `json:"totalMinutes"`
}

// PageSize is the number of entries per dashboard page.
const PageSize = 10

// Page is one page of a user's entries, newest first.
type Page struct {
	Entries      []TimeEntry `json:"tasks"`
	CurrentPage  int         `json:"currentPage"`
	TotalPages   int         `json:"totalPages"`
	TotalEntries int         `json:"totalTasks"`
}
