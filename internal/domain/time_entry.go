package domain

import "time"

// Status is the lifecycle state of a time entry.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// TimeEntry is a single logged unit of time against a job type.
type TimeEntry struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	JobType     string     `json:"jobType"`
	Date        time.Time  `json:"date"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Deadline    *time.Time `json:"deadline"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	// ExternalID identifies the entry in the system it was imported from.
	ExternalID string `json:"externalId,omitempty"`
}

// IsRunning reports whether the entry has no end time yet.
func (e TimeEntry) IsRunning() bool {
	return e.EndTime == nil
}

// Minutes returns the whole minutes between start and end.
// Running entries and entries whose end precedes their start count as zero.
func (e TimeEntry) Minutes() int64 {
	if e.EndTime == nil {
		return 0
	}
	d := e.EndTime.Sub(e.StartTime)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Minute)
}

// StatusFor derives the status of a new entry from its end time.
func StatusFor(end *time.Time) Status {
	if end == nil {
		return StatusInProgress
	}
	return StatusCompleted
}
