package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timesheet/internal/auth"
)

var (
	tokenUserID int64
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for a user",
	Long: `Issue a signed session token. Send it as the session cookie or as an
"Authorization: Bearer" header. A zero --ttl issues a token without expiry.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if tokenUserID <= 0 {
			return fmt.Errorf("--user-id must be positive")
		}
		sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Auth.SecureCookie)
		if err != nil {
			return err
		}
		token, err := sessions.Issue(tokenUserID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "User the token identifies")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user-id")
}
