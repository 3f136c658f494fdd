package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/aggregate"
	"timesheet/internal/domain"
	"timesheet/internal/ports"
)

// Renderer turns aggregated groups into a document.
type Renderer interface {
	Render(w io.Writer, groups []domain.ReportGroup, user domain.User, rng domain.DateRange) error
}

// Report is the aggregated view of a user's entries over a range.
type Report struct {
	User    domain.User
	Range   domain.DateRange
	Groups  []domain.ReportGroup
	Summary domain.Summary
}

// ReportUseCase resolves the caller, fetches their entries for a range and aggregates them.
type ReportUseCase struct {
	Users    ports.UserStore
	Entries  ports.EntryStore
	Renderer Renderer
	Location *time.Location
}

// Build returns domain.ErrNotFound for unknown users and a
// *domain.ValidationError when start is after end.
func (uc *ReportUseCase) Build(ctx context.Context, userID int64, start, end time.Time) (Report, error) {
	if uc.Users == nil || uc.Entries == nil {
		return Report{}, errors.New("usecase not initialized: missing dependencies")
	}
	log := zerolog.Ctx(ctx)

	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	if start.After(end) {
		return Report{}, domain.Invalid("startDate", "must not be after endDate")
	}

	rng := domain.NewDateRange(start, end, uc.location())
	log.Debug().Int64("user_id", user.ID).Time("from", rng.Start).Time("to", rng.End).Msg("querying entries")

	entries, err := uc.Entries.ListEntries(ctx, user.ID, rng)
	if err != nil {
		return Report{}, fmt.Errorf("list entries: %w", err)
	}

	// Reports only ever show the caller's entries from inside the range.
	kept := entries[:0:0]
	for _, e := range entries {
		if e.OwnerID == user.ID && rng.Contains(e.Date) {
			kept = append(kept, e)
		}
	}
	if dropped := len(entries) - len(kept); dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("store returned entries outside the requested range or owner")
	}

	groups := aggregate.Aggregate(kept, uc.location())
	log.Debug().Int("entries", len(kept)).Int("days", len(groups)).Msg("aggregated entries")

	return Report{
		User:    user,
		Range:   rng,
		Groups:  groups,
		Summary: aggregate.Summarize(groups),
	}, nil
}

// PDF builds the report and renders it in memory, so nothing is returned on failure.
func (uc *ReportUseCase) PDF(ctx context.Context, userID int64, start, end time.Time) ([]byte, string, error) {
	if uc.Renderer == nil {
		return nil, "", errors.New("usecase not initialized: missing renderer")
	}
	rep, err := uc.Build(ctx, userID, start, end)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := uc.Renderer.Render(&buf, rep.Groups, rep.User, rep.Range); err != nil {
		return nil, "", fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), Filename(rep.Range), nil
}

// Filename suggests a download name derived from the range.
func Filename(r domain.DateRange) string {
	return fmt.Sprintf("time-report-%s_%s.pdf", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

func (uc *ReportUseCase) location() *time.Location {
	if uc.Location == nil {
		return time.UTC
	}
	return uc.Location
}
