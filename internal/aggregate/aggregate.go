// Package aggregate groups time entries by calendar date and totals their durations.
// Every consumer of durations (report renderer, summary endpoint, CLI) goes through here.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"timesheet/internal/domain"
)

const dayKey = "2006-01-02"

// Aggregate groups entries by the calendar date of their Date field in loc.
// Groups come out in ascending date order; entries keep their input order
// within a group. Running entries are listed but add nothing to totals.
func Aggregate(entries []domain.TimeEntry, loc *time.Location) []domain.ReportGroup {
	if loc == nil {
		loc = time.UTC
	}
	if len(entries) == 0 {
		return []domain.ReportGroup{}
	}

	index := make(map[string]int)
	var groups []domain.ReportGroup
	for _, e := range entries {
		d := e.Date.In(loc)
		key := d.Format(dayKey)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.ReportGroup{
				Date: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc),
			})
		}
		g := &groups[i]
		m := e.Minutes()
		g.Entries = append(g.Entries, e)
		g.TotalMinutes += m
		g.Jobs = addJob(g.Jobs, e.JobType, m)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Date.Before(groups[b].Date)
	})
	return groups
}

func addJob(jobs []domain.JobTotal, jobType string, minutes int64) []domain.JobTotal {
	for i := range jobs {
		if jobs[i].JobType == jobType {
			jobs[i].Minutes += minutes
			return jobs
		}
	}
	return append(jobs, domain.JobTotal{JobType: jobType, Minutes: minutes})
}

// Summarize totals a set of groups.
func Summarize(groups []domain.ReportGroup) domain.Summary {
	var s domain.Summary
	for _, g := range groups {
		s.TotalEntries += len(g.Entries)
		s.TotalMinutes += g.TotalMinutes
	}
	s.TotalDays = len(groups)
	return s
}

// FormatMinutes renders a minute count as "{h}h {m}m" using floor division.
func FormatMinutes(total int64) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
