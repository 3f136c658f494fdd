package usecase

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"timesheet/internal/domain"
	"timesheet/internal/ports"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUser(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockStore) ListEntries(ctx context.Context, ownerID int64, r domain.DateRange) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, ownerID, r)
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *mockStore) ListPage(ctx context.Context, ownerID int64, offset, limit int) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *mockStore) CountEntries(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) CreateEntry(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(domain.TimeEntry), args.Error(1)
}

func (m *mockStore) UpsertImported(ctx context.Context, entries []domain.TimeEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(w io.Writer, groups []domain.ReportGroup, user domain.User, rng domain.DateRange) error {
	args := m.Called(w, groups, user, rng)
	if s, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, s)
	}
	return args.Error(1)
}

type mockToggl struct {
	mock.Mock
}

func (m *mockToggl) ListTimeEntries(ctx context.Context, from, to time.Time) ([]ports.TogglEntry, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]ports.TogglEntry), args.Error(1)
}

func (m *mockToggl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Project), args.Error(1)
}
