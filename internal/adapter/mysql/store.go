package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"timesheet/internal/domain"
)

// Client implements ports.Store on top of MySQL.
type Client struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewClient opens a MySQL connection using the provided DSN.
// Example DSN: user:pass@tcp(host:3306)/dbname?loc=UTC
func NewClient(ctx context.Context, dsn string, log zerolog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return New(db, log), nil
}

// NormalizeDSN turns on parseTime, which scanning DATETIME columns into
// time.Time depends on.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql: invalid DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// New wraps an already opened database.
func New(db *sql.DB, log zerolog.Logger) *Client {
	return &Client{db: db, log: log.With().Str("store", "mysql").Logger()}
}

const taskColumns = `id, user_id, title, description, job_type, date, start_time, end_time, deadline, status, created_at`

// GetUser returns domain.ErrNotFound when no user has the id.
func (c *Client) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var (
		u    domain.User
		name sql.NullString
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("mysql: get user %d: %w", id, err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	return u, nil
}

func (c *Client) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
		nullString(u.Name), u.Email, u.CreatedAt.UTC(),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("mysql: create user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return domain.User{}, fmt.Errorf("mysql: create user: %w", err)
	}
	c.log.Info().Int64("user_id", u.ID).Msg("user created")
	return u, nil
}

func (c *Client) ListEntries(ctx context.Context, ownerID int64, r domain.DateRange) ([]domain.TimeEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date ASC, start_time ASC, id ASC`,
		ownerID, r.Start.UTC(), r.End.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("mysql: list entries: %w", err)
	}
	return scanEntries(rows)
}

func (c *Client) ListPage(ctx context.Context, ownerID int64, offset, limit int) ([]domain.TimeEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
WHERE user_id = ?
ORDER BY date DESC, start_time DESC, id DESC
LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("mysql: list page: %w", err)
	}
	return scanEntries(rows)
}

func (c *Client) CountEntries(ctx context.Context, ownerID int64) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("mysql: count entries: %w", err)
	}
	return n, nil
}

func (c *Client) CreateEntry(ctx context.Context, e domain.TimeEntry) (domain.TimeEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO tasks
  (user_id, title, description, job_type, date, start_time, end_time, deadline, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Title, nullString(e.Description), e.JobType,
		e.Date.UTC(), e.StartTime.UTC(), nullTime(e.EndTime), nullTime(e.Deadline),
		string(e.Status), e.CreatedAt.UTC(),
	)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("mysql: create entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return domain.TimeEntry{}, fmt.Errorf("mysql: create entry: %w", err)
	}
	return e, nil
}

// UpsertImported upserts entries keyed by (user_id, external_id).
func (c *Client) UpsertImported(ctx context.Context, entries []domain.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	const q = `
INSERT INTO tasks
  (user_id, external_id, title, description, job_type, date, start_time, end_time, status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title=VALUES(title),
  description=VALUES(description),
  job_type=VALUES(job_type),
  date=VALUES(date),
  start_time=VALUES(start_time),
  end_time=VALUES(end_time),
  status=VALUES(status);
`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		if e.ExternalID == "" {
			tx.Rollback()
			return fmt.Errorf("mysql: entry %q has no external id", e.Title)
		}
		if _, err := stmt.ExecContext(ctx,
			e.OwnerID, e.ExternalID, e.Title, nullString(e.Description), e.JobType,
			e.Date.UTC(), e.StartTime.UTC(), nullTime(e.EndTime), string(e.Status), now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("mysql: upsert %s: %w", e.ExternalID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info().Int("count", len(entries)).Msg("upserted imported entries")
	return nil
}

// Close closes the underlying DB.
func (c *Client) Close() error { return c.db.Close() }

func scanEntries(rows *sql.Rows) ([]domain.TimeEntry, error) {
	defer rows.Close()
	out := []domain.TimeEntry{}
	for rows.Next() {
		var (
			e         domain.TimeEntry
			desc      sql.NullString
			end, dead sql.NullTime
			status    string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &desc, &e.JobType,
			&e.Date, &e.StartTime, &end, &dead, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("mysql: scan entry: %w", err)
		}
		if desc.Valid {
			e.Description = &desc.String
		}
		if end.Valid {
			t := end.Time
			e.EndTime = &t
		}
		if dead.Valid {
			t := dead.Time
			e.Deadline = &t
		}
		e.Status = domain.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
