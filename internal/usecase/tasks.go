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

// NewTask is a validated task creation request.
type NewTask struct {
	Title       string
	Description *string
	JobType     string
	Date        time.Time
	StartTime   time.Time
	EndTime     *time.Time
	Deadline    *time.Time
}

// TaskUseCase creates and lists a user's entries.
type TaskUseCase struct {
	Users   ports.UserStore
	Entries ports.EntryStore
}

func (uc *TaskUseCase) Create(ctx context.Context, userID int64, in NewTask) (domain.TimeEntry, error) {
	if uc.Users == nil || uc.Entries == nil {
		return domain.TimeEntry{}, errors.New("usecase not initialized: missing dependencies")
	}
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if err := in.validate(); err != nil {
		return domain.TimeEntry{}, err
	}

	e, err := uc.Entries.CreateEntry(ctx, domain.TimeEntry{
		OwnerID:     user.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		JobType:     strings.TrimSpace(in.JobType),
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Deadline:    in.Deadline,
		Status:      domain.StatusFor(in.EndTime),
	})
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("create entry: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Int64("task_id", e.ID).Msg("task created")
	return e, nil
}

func (in NewTask) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.Invalid("title", "is required")
	case strings.TrimSpace(in.JobType) == "":
		return domain.Invalid("jobType", "is required")
	case in.Date.IsZero():
		return domain.Invalid("date", "is required")
	case in.StartTime.IsZero():
		return domain.Invalid("startTime", "is required")
	case in.EndTime != nil && in.EndTime.Before(in.StartTime):
		return domain.Invalid("endTime", "must not be before startTime")
	}
	return nil
}

// Page returns the 1-based page of the user's entries, newest first.
// Pages below 1 are treated as 1.
func (uc *TaskUseCase) Page(ctx context.Context, userID int64, page int) (domain.Page, error) {
	if uc.Users == nil || uc.Entries == nil {
		return domain.Page{}, errors.New("usecase not initialized: missing dependencies")
	}
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return domain.Page{}, err
	}
	if page < 1 {
		page = 1
	}

	total, err := uc.Entries.CountEntries(ctx, user.ID)
	if err != nil {
		return domain.Page{}, fmt.Errorf("count entries: %w", err)
	}
	entries, err := uc.Entries.ListPage(ctx, user.ID, (page-1)*domain.PageSize, domain.PageSize)
	if err != nil {
		return domain.Page{}, fmt.Errorf("list page: %w", err)
	}
	return domain.Page{
		Entries:      entries,
		CurrentPage:  page,
		TotalPages:   (total + domain.PageSize - 1) / domain.PageSize,
		TotalEntries: total,
	}, nil
}
