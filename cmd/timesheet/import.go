package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timesheet/internal/app"
)

var (
	importUserID int64
	importFrom   string
	importTo     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import time entries from other trackers",
}

var importTogglCmd = &cobra.Command{
	Use:   "toggl",
	Short: "Import Toggl Track time entries into a user's tasks",
	Long: `Fetch time entries from the Toggl Track API and store them as tasks.
Without --from/--to the last 24 hours are imported. Re-importing a window
updates previously imported entries instead of duplicating them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		now := time.Now().UTC()
		to, err := parseEnd(importTo, now)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		from, err := parseStart(importFrom, to.Add(-24*time.Hour))
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}

		application, err := app.New(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		n, err := application.RunImport(ctx, importUserID, from, to)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
		return nil
	},
}

func init() {
	importTogglCmd.Flags().Int64Var(&importUserID, "user-id", 0, "User receiving the entries")
	importTogglCmd.Flags().StringVar(&importFrom, "from", "", "Start (RFC3339 or YYYY-MM-DD, default: to - 24h)")
	importTogglCmd.Flags().StringVar(&importTo, "to", "", "End (RFC3339 or YYYY-MM-DD inclusive, default: now)")
	_ = importTogglCmd.MarkFlagRequired("user-id")
	importCmd.AddCommand(importTogglCmd)
}
