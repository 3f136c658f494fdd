package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
)

type memory struct {
	state   State
	saves   int
	failing bool
}

func (m *memory) hooks() Hooks {
	return Hooks{
		Load: func(context.Context) (State, error) { return m.state, nil },
		Save: func(_ context.Context, s State) error {
			if m.failing {
				return errors.New("disk full")
			}
			m.saves++
			m.state = s
			return nil
		},
	}
}

func openMemory(t *testing.T, m *memory) *Store {
	t.Helper()
	s, err := Open(context.Background(), m.hooks(), domain.User{Email: "me@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func newEntry(day int, hour int) domain.TimeEntry {
	d := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	start := d.Add(time.Duration(hour) * time.Hour)
	end := start.Add(30 * time.Minute)
	return domain.TimeEntry{
		OwnerID:   1,
		Title:     "task",
		JobType:   "dev",
		Date:      d,
		StartTime: start,
		EndTime:   &end,
		Status:    domain.StatusCompleted,
	}
}

func TestOpen_CreatesDefaultUser(t *testing.T) {
	m := &memory{}
	s := openMemory(t, m)

	u, err := s.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", u.Email)
	assert.Equal(t, 1, m.saves)

	_, err = s.GetUser(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpen_RequiresHooks(t *testing.T) {
	_, err := Open(context.Background(), Hooks{}, domain.User{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestStore_CreateAndListRange(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, &memory{})

	for _, e := range []domain.TimeEntry{newEntry(3, 9), newEntry(1, 14), newEntry(1, 9), newEntry(5, 9)} {
		_, err := s.CreateEntry(ctx, e)
		require.NoError(t, err)
	}
	other := newEntry(2, 9)
	other.OwnerID = 2
	_, err := s.CreateEntry(ctx, other)
	require.NoError(t, err)

	r := domain.NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.UTC)
	got, err := s.ListEntries(ctx, 1, r)
	require.NoError(t, err)

	var ids []int64
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{3, 2, 1}, ids)
}

func TestStore_ListPage(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, &memory{})
	for day := 1; day <= 12; day++ {
		_, err := s.CreateEntry(ctx, newEntry(day, 9))
		require.NoError(t, err)
	}

	first, err := s.ListPage(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, 12, first[0].Date.Day())

	second, err := s.ListPage(ctx, 1, 10, 10)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 1, second[1].Date.Day())

	empty, err := s.ListPage(ctx, 1, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := s.CountEntries(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestStore_CreateEntry_SaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	m := &memory{}
	s := openMemory(t, m)
	m.failing = true

	_, err := s.CreateEntry(ctx, newEntry(1, 9))
	require.Error(t, err)

	n, err := s.CountEntries(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	m.failing = false
	e, err := s.CreateEntry(ctx, newEntry(1, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}

func TestStore_UpsertImported(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t, &memory{})

	e := newEntry(1, 9)
	e.ExternalID = "toggl:1"
	require.NoError(t, s.UpsertImported(ctx, []domain.TimeEntry{e}))

	e.Title = "renamed"
	require.NoError(t, s.UpsertImported(ctx, []domain.TimeEntry{e}))

	page, err := s.ListPage(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "renamed", page[0].Title)

	e.ExternalID = ""
	assert.Error(t, s.UpsertImported(ctx, []domain.TimeEntry{e}))
}

func TestFileHooks_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := Open(ctx, FileHooks(path), domain.User{Email: "me@example.com"}, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.CreateEntry(ctx, newEntry(1, 9))
	require.NoError(t, err)

	reopened, err := Open(ctx, FileHooks(path), domain.User{Email: "other@example.com"}, zerolog.Nop())
	require.NoError(t, err)

	u, err := reopened.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", u.Email)

	e, err := reopened.CreateEntry(ctx, newEntry(2, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.ID)
}

func TestFileHooks_CorruptFileIsBackedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := FileHooks(path).Load(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr)
}
