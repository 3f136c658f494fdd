package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"timesheet/internal/config"
)

var (
	cfgPath string
	envPath string

	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Personal time tracking with PDF reports",
	Long: `timesheet records time entries against job types, serves them over a
small JSON API and exports date-ranged PDF reports.

Configuration is read from an optional file (--config) and from TIMESHEET_*
environment variables, e.g. TIMESHEET_MYSQL_DSN or TIMESHEET_AUTH_JWT_SECRET.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
		if logger, err = newLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
			return err
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "Dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(importCmd)
}

func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log.level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	switch format {
	case "", "json":
		l = zerolog.New(os.Stdout)
	case "console":
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log.format %q: want json or console", format)
	}
	return l.Level(lvl).With().Timestamp().Logger(), nil
}
