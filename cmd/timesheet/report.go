package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"timesheet/internal/app"
)

var (
	reportUserID int64
	reportFrom   string
	reportTo     string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a PDF report for a user and date range",
	Example: `  timesheet report --user-id 1 --from 2024-01-01 --to 2024-01-31
  timesheet report --user-id 1 --from 2024-01-01 --to 2024-01-31 --out reports/`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		from, err := parseDay(reportFrom, loc)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		to, err := parseDay(reportTo, loc)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}

		application, err := app.New(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		doc, name, err := application.Reports.PDF(ctx, reportUserID, from, to)
		if err != nil {
			return err
		}
		out := reportOut
		if out == "" {
			out = name
		} else if info, err := os.Stat(out); err == nil && info.IsDir() {
			out = filepath.Join(out, name)
		}
		if err := os.WriteFile(out, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	reportCmd.Flags().Int64Var(&reportUserID, "user-id", 0, "User to report on")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day (YYYY-MM-DD or RFC3339)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day, inclusive (YYYY-MM-DD or RFC3339)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file or directory (default: derived from the range)")
	_ = reportCmd.MarkFlagRequired("user-id")
	_ = reportCmd.MarkFlagRequired("from")
	_ = reportCmd.MarkFlagRequired("to")
}
