package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	redisclient "github.com/vietddude/catalog/internal/infra/redis"
)

var sessionTTL time.Duration

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the session token shared through Redis",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the session token used for upstream requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		if err := rc.SetSession(cmd.Context(), cfg.Auth.SessionKey, args[0], sessionTTL); err != nil {
			return err
		}
		slog.Info("Session token stored", "key", cfg.Auth.SessionKey, "ttl", sessionTTL)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		if err := rc.ClearSession(cmd.Context(), cfg.Auth.SessionKey); err != nil {
			return err
		}
		slog.Info("Session token cleared", "key", cfg.Auth.SessionKey)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print whether a session token is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := openSessions()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()

		_, found, err := rc.GetSession(cmd.Context(), cfg.Auth.SessionKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: stored=%t\n", cfg.Auth.SessionKey, found)
		return nil
	},
}

func init() {
	sessionSetCmd.Flags().DurationVar(&sessionTTL, "ttl", 0, "token lifetime (0 = no expiry)")
	sessionCmd.AddCommand(sessionSetCmd, sessionClearCmd, sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func openSessions() (*redisclient.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is not configured")
	}
	rc, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rc, nil
}
