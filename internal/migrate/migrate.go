package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed sql/mysql/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Dialect selects the migration set and SQL flavour.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case MySQL:
		return "mysql", nil
	case Postgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("migrate: unsupported dialect %q", d)
}

// Run applies pending migrations found under internal/migrate/sql/<dialect>.
// Migrations must be named like 0001_description.sql and will be executed
// in lexicographic order. The entire file is executed as a single statement
// batch, so multiStatements is switched on for MySQL DSNs.
func Run(ctx context.Context, d Dialect, dsn string, log zerolog.Logger) error {
	driver, err := d.driver()
	if err != nil {
		return err
	}
	if dsn, err = dsnFor(d, dsn); err != nil {
		return err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		return err
	}
	return Apply(ctx, db, d, log)
}

func dsnFor(d Dialect, dsn string) (string, error) {
	if d != MySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("migrate: invalid mysql DSN: %w", err)
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Apply runs pending migrations on an open database.
func Apply(ctx context.Context, db *sql.DB, d Dialect, log zerolog.Logger) error {
	if _, err := d.driver(); err != nil {
		return err
	}
	if err := ensureMigrationsTable(ctx, db, d); err != nil {
		return err
	}

	files, err := Files(d)
	if err != nil {
		return err
	}

	applied, err := loadApplied(ctx, db)
	if err != nil {
		return err
	}

	for _, f := range files {
		base := path.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if applied[ver] {
			log.Debug().Int("version", ver).Str("file", base).Msg("migration already applied")
			continue
		}
		b, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return err
		}
		log.Info().Int("version", ver).Str("file", base).Msg("applying migration")
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("applying %s: %w", base, err)
		}
		if err := recordApplied(ctx, db, d, ver); err != nil {
			return err
		}
	}
	return nil
}

// Files lists the embedded migrations for d in execution order.
func Files(d Dialect) ([]string, error) {
	files, err := fs.Glob(migrationsFS, "sql/"+string(d)+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB, d Dialect) error {
	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB;`
	if d == Postgres {
		ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL
    );`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}

func recordApplied(ctx context.Context, db *sql.DB, d Dialect, version int) error {
	q := "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"
	if d == Postgres {
		q = "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)"
	}
	_, err := db.ExecContext(ctx, q, version, time.Now().UTC())
	return err
}

func parseVersion(name string) (int, error) {
	// Expect prefix like 0001_...
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing prefix number")
	}
	v, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, err
	}
	return v, nil
}
