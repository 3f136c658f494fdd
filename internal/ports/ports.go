package ports

import (
	"context"
	"time"

	"timesheet/internal/domain"
)

// EntryStore persists time entries keyed by their owner.
type EntryStore interface {
	// ListEntries returns the owner's entries whose date falls in r, ordered by date then start time.
	ListEntries(ctx context.Context, ownerID int64, r domain.DateRange) ([]domain.TimeEntry, error)
	// ListPage returns up to limit entries newest first, skipping offset.
	ListPage(ctx context.Context, ownerID int64, offset, limit int) ([]domain.TimeEntry, error)
	CountEntries(ctx context.Context, ownerID int64) (int, error)
	CreateEntry(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error)
	// UpsertImported inserts or updates entries keyed by (owner, ExternalID).
	UpsertImported(ctx context.Context, entries []domain.TimeEntry) error
}

// UserStore resolves users. GetUser returns domain.ErrNotFound for unknown ids.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

// Store is the full persistence surface used by the application.
type Store interface {
	EntryStore
	UserStore
	Close() error
}

// TogglClient defines methods to fetch time entries from Toggl.
type TogglClient interface {
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]TogglEntry, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// TogglEntry is a time entry as reported by Toggl.
type TogglEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	Tags        []string
	Start       time.Time
	Stop        *time.Time
}
