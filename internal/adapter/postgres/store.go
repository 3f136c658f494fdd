package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"timesheet/internal/domain"
)

// Store implements ports.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect opens a pool for url and pings it.
func Connect(ctx context.Context, url string, log zerolog.Logger) (*Store, error) {
	if url == "" {
		return nil, errors.New("postgres: url is required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(c); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool, log: log.With().Str("store", "postgres").Logger()}, nil
}

const taskColumns = `id, user_id, title, description, job_type, date, start_time, end_time, deadline, status, created_at`

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users(name, email, created_at)
		VALUES($1, $2, $3)
		RETURNING id
	`, u.Name, u.Email, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("postgres: create user: %w", err)
	}
	s.log.Info().Int64("user_id", u.ID).Msg("user created")
	return u, nil
}

func (s *Store) ListEntries(ctx context.Context, ownerID int64, r domain.DateRange) ([]domain.TimeEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, start_time ASC, id ASC
	`, ownerID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("postgres: list entries: %w", err)
	}
	return collect(rows)
}

func (s *Store) ListPage(ctx context.Context, ownerID int64, offset, limit int) ([]domain.TimeEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1
		ORDER BY date DESC, start_time DESC, id DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list page: %w", err)
	}
	return collect(rows)
}

func (s *Store) CountEntries(ctx context.Context, ownerID int64) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count entries: %w", err)
	}
	return n, nil
}

func (s *Store) CreateEntry(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks(user_id, title, description, job_type, date, start_time, end_time, deadline, status, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, e.OwnerID, e.Title, e.Description, e.JobType, e.Date, e.StartTime, e.EndTime, e.Deadline, string(e.Status), e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("postgres: create entry: %w", err)
	}
	return e, nil
}

// UpsertImported upserts entries keyed by (user_id, external_id) in one batch.
func (s *Store) UpsertImported(ctx context.Context, entries []domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.ExternalID == "" {
			return fmt.Errorf("postgres: entry %q has no external id", e.Title)
		}
		batch.Queue(`
			INSERT INTO tasks(user_id, external_id, title, description, job_type, date, start_time, end_time, status, created_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id, external_id) DO UPDATE
			SET title=EXCLUDED.title,
				description=EXCLUDED.description,
				job_type=EXCLUDED.job_type,
				date=EXCLUDED.date,
				start_time=EXCLUDED.start_time,
				end_time=EXCLUDED.end_time,
				status=EXCLUDED.status
		`, e.OwnerID, e.ExternalID, e.Title, e.Description, e.JobType, e.Date, e.StartTime, e.EndTime, string(e.Status), now)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: upsert imported: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info().Int("count", len(entries)).Msg("upserted imported entries")
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func collect(rows pgx.Rows) ([]domain.TimeEntry, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TimeEntry, error) {
		var (
			e      domain.TimeEntry
			status string
		)
		err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.JobType,
			&e.Date, &e.StartTime, &e.EndTime, &e.Deadline, &status, &e.CreatedAt)
		e.Status = domain.Status(status)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan entries: %w", err)
	}
	if out == nil {
		out = []domain.TimeEntry{}
	}
	return out, nil
}
