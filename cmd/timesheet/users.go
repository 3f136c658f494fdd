package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timesheet/internal/app"
	"timesheet/internal/domain"
)

var (
	userEmail string
	userName  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user and print its id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		email := strings.TrimSpace(userEmail)
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		u := domain.User{Email: email}
		if name := strings.TrimSpace(userName); name != "" {
			u.Name = &name
		}

		application, err := app.New(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		created, err := application.Store.CreateUser(ctx, u)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address (unique)")
	usersAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCmd.AddCommand(usersAddCmd)
}
