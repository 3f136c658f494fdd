package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"timesheet/internal/adapter/local"
	msql "timesheet/internal/adapter/mysql"
	"timesheet/internal/adapter/postgres"
	tg "timesheet/internal/adapter/toggl"
	"timesheet/internal/auth"
	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/migrate"
	"timesheet/internal/ports"
	"timesheet/internal/render"
	"timesheet/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log      zerolog.Logger
	cfg      config.Config
	Store    ports.Store
	Sessions *auth.Sessions
	Reports  *usecase.ReportUseCase
	Tasks    *usecase.TaskUseCase
	Import   *usecase.ImportUseCase
}

// New opens the configured store and builds the use cases on top of it.
// SQL stores are migrated before use.
func New(ctx context.Context, log zerolog.Logger, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.SecureCookie)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		log:      log,
		cfg:      cfg,
		Store:    store,
		Sessions: sessions,
		Reports: &usecase.ReportUseCase{
			Users:    store,
			Entries:  store,
			Renderer: render.New(render.WithLocation(loc)),
			Location: loc,
		},
		Tasks: &usecase.TaskUseCase{Users: store, Entries: store},
	}
	if cfg.Toggl.APIToken != "" {
		a.Import = &usecase.ImportUseCase{
			Toggl:   tg.NewClient(cfg.Toggl.BaseURL, cfg.Toggl.APIToken, cfg.Toggl.WorkspaceID, log),
			Users:   store,
			Entries: store,
		}
	}
	return a, nil
}

// OpenStore connects to the store selected by store.driver.
func OpenStore(ctx context.Context, log zerolog.Logger, cfg config.Config) (ports.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		if err := migrate.Run(ctx, migrate.MySQL, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		c, err := msql.NewClient(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.DriverPostgres:
		if err := migrate.Run(ctx, migrate.Postgres, cfg.Postgres.URL, log); err != nil {
			return nil, err
		}
		s, err := postgres.Connect(ctx, cfg.Postgres.URL, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverLocal:
		owner := domain.User{Email: cfg.Local.UserEmail}
		if cfg.Local.UserName != "" {
			name := cfg.Local.UserName
			owner.Name = &name
		}
		s, err := local.Open(ctx, local.FileHooks(cfg.Local.Path), owner, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// RunImport pulls Toggl entries for userID in [from, to].
func (a *App) RunImport(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	if a.Import == nil {
		return 0, errors.New("toggl import is not configured: set toggl.api_token")
	}
	return a.Import.Run(ctx, userID, from, to)
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
