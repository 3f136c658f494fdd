package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/domain"
	"timesheet/internal/ports"
)

// DefaultJobType labels imported entries that have neither a project nor tags.
const DefaultJobType = "General"

// ImportUseCase copies Toggl time entries into a user's tasks.
type ImportUseCase struct {
	Toggl   ports.TogglClient
	Users   ports.UserStore
	Entries ports.EntryStore
}

// Run imports entries started in [from, to] and returns how many were written.
// Re-running over the same window updates rather than duplicates.
func (uc *ImportUseCase) Run(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	if uc.Toggl == nil || uc.Users == nil || uc.Entries == nil {
		return 0, errors.New("usecase not initialized: missing dependencies")
	}
	log := zerolog.Ctx(ctx)

	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	log.Info().Time("from", from).Time("to", to).Msg("fetching time entries")
	raw, err := uc.Toggl.ListTimeEntries(ctx, from, to)
	if err != nil {
		return 0, err
	}
	log.Info().Int("count", len(raw)).Msg("fetched time entries")

	if len(raw) == 0 {
		log.Info().Msg("no entries to import")
		return 0, nil
	}

	projects, err := uc.Toggl.ListProjects(ctx)
	if err != nil {
		return 0, err
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	entries := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, convert(user.ID, r, names))
	}
	if err := uc.Entries.UpsertImported(ctx, entries); err != nil {
		return 0, fmt.Errorf("store imported entries: %w", err)
	}
	log.Info().Int("count", len(entries)).Msg("import completed")
	return len(entries), nil
}

func convert(owner int64, r ports.TogglEntry, projects map[int64]string) domain.TimeEntry {
	title := strings.TrimSpace(r.Description)
	if title == "" {
		title = "Untitled"
	}
	job := DefaultJobType
	switch {
	case r.ProjectID != nil && projects[*r.ProjectID] != "":
		job = projects[*r.ProjectID]
	case len(r.Tags) > 0:
		job = r.Tags[0]
	}
	return domain.TimeEntry{
		OwnerID:    owner,
		ExternalID: fmt.Sprintf("toggl:%d", r.ID),
		Title:      title,
		JobType:    job,
		Date:       r.Start,
		StartTime:  r.Start,
		EndTime:    r.Stop,
		Status:     domain.StatusFor(r.Stop),
	}
}
