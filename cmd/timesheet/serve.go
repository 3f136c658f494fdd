package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"timesheet/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		return app.Serve(ctx, application.HTTPServer(), cfg.HTTP.ShutdownTimeout, logger)
	},
}
