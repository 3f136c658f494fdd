// Package local is the single-user deployment mode: all state lives in memory,
// is loaded once at startup and written back after every change through
// injected hooks.
package local

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/domain"
)

// State is everything the local mode persists.
type State struct {
	User    domain.User        `json:"user"`
	NextID  int64              `json:"next_id"`
	Entries []domain.TimeEntry `json:"entries"`
}

// Hooks load and persist State. Load returns a zero State when nothing was saved yet.
type Hooks struct {
	Load func(ctx context.Context) (State, error)
	Save func(ctx context.Context, s State) error
}

// Store implements ports.Store over State.
type Store struct {
	mu    sync.RWMutex
	state State
	hooks Hooks
	log   zerolog.Logger
}

// Open loads state through hooks. If no user was saved, owner becomes the
// single user with id 1.
func Open(ctx context.Context, hooks Hooks, owner domain.User, log zerolog.Logger) (*Store, error) {
	if hooks.Load == nil || hooks.Save == nil {
		return nil, errors.New("local: load and save hooks are required")
	}
	st, err := hooks.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("local: load: %w", err)
	}
	s := &Store{state: st, hooks: hooks, log: log.With().Str("store", "local").Logger()}
	if s.state.User.ID == 0 {
		owner.ID = 1
		if owner.CreatedAt.IsZero() {
			owner.CreatedAt = time.Now().UTC()
		}
		s.state.User = owner
		if err := s.hooks.Save(ctx, s.state); err != nil {
			return nil, fmt.Errorf("local: save: %w", err)
		}
	}
	if s.state.NextID == 0 {
		s.state.NextID = 1
		for _, e := range s.state.Entries {
			if e.ID >= s.state.NextID {
				s.state.NextID = e.ID + 1
			}
		}
	}
	s.log.Debug().Int("entries", len(s.state.Entries)).Int64("user_id", s.state.User.ID).Msg("state loaded")
	return s, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id != s.state.User.ID {
		return domain.User{}, domain.ErrNotFound
	}
	return s.state.User, nil
}

// CreateUser replaces the profile of the single local user; its id is kept.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.User
	u.ID = prev.ID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = prev.CreatedAt
	}
	s.state.User = u
	if err := s.hooks.Save(ctx, s.state); err != nil {
		s.state.User = prev
		return domain.User{}, fmt.Errorf("local: save: %w", err)
	}
	return u, nil
}

func (s *Store) ListEntries(_ context.Context, ownerID int64, r domain.DateRange) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.TimeEntry{}
	for _, e := range s.state.Entries {
		if e.OwnerID == ownerID && r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return before(out[i], out[j]) })
	return out, nil
}

func (s *Store) ListPage(_ context.Context, ownerID int64, offset, limit int) ([]domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.TimeEntry
	for _, e := range s.state.Entries {
		if e.OwnerID == ownerID {
			all = append(all, e)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return before(all[j], all[i]) })
	if offset >= len(all) {
		return []domain.TimeEntry{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]domain.TimeEntry{}, all[offset:end]...), nil
}

func (s *Store) CountEntries(_ context.Context, ownerID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.state.Entries {
		if e.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateEntry(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.ID = s.state.NextID
	s.state.NextID++
	s.state.Entries = append(s.state.Entries, e)
	if err := s.hooks.Save(ctx, s.state); err != nil {
		s.state.Entries = s.state.Entries[:len(s.state.Entries)-1]
		s.state.NextID--
		return domain.TimeEntry{}, fmt.Errorf("local: save: %w", err)
	}
	return e, nil
}

func (s *Store) UpsertImported(ctx context.Context, entries []domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := State{User: prev.User, NextID: prev.NextID, Entries: append([]domain.TimeEntry{}, prev.Entries...)}
	now := time.Now().UTC()
	for _, e := range entries {
		if e.ExternalID == "" {
			return fmt.Errorf("local: entry %q has no external id", e.Title)
		}
		i := indexOf(next.Entries, e.OwnerID, e.ExternalID)
		if i >= 0 {
			e.ID = next.Entries[i].ID
			e.CreatedAt = next.Entries[i].CreatedAt
			next.Entries[i] = e
			continue
		}
		e.ID = next.NextID
		next.NextID++
		e.CreatedAt = now
		next.Entries = append(next.Entries, e)
	}
	if err := s.hooks.Save(ctx, next); err != nil {
		return fmt.Errorf("local: save: %w", err)
	}
	s.state = next
	s.log.Info().Int("count", len(entries)).Msg("upserted imported entries")
	return nil
}

func (s *Store) Close() error { return nil }

func indexOf(entries []domain.TimeEntry, owner int64, externalID string) int {
	for i, e := range entries {
		if e.OwnerID == owner && e.ExternalID == externalID {
			return i
		}
	}
	return -1
}

func before(a, b domain.TimeEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.Before(b.StartTime)
	}
	return a.ID < b.ID
}
