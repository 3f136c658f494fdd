package main

import (
	"github.com/spf13/cobra"

	"timesheet/internal/config"
	"timesheet/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		switch cfg.Store.Driver {
		case config.DriverMySQL:
			return migrate.Run(ctx, migrate.MySQL, cfg.MySQL.DSN, logger)
		case config.DriverPostgres:
			return migrate.Run(ctx, migrate.Postgres, cfg.Postgres.URL, logger)
		default:
			logger.Info().Str("driver", cfg.Store.Driver).Msg("store has no migrations")
			return nil
		}
	},
}
