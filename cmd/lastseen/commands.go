// Package main is the entry point of the lastseen CLI.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"basegraph.app/lastseen/common/logger"
	"basegraph.app/lastseen/common/otel"
	"basegraph.app/lastseen/core/config"
	"basegraph.app/lastseen/internal/slack"
)

var (
	cfg       config.Config
	telemetry *otel.Telemetry
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "lastseen",
	Short: "Audit workspace members by their last login",
	Long: `lastseen lists the active members of a Slack workspace, walks the team
access log back to a horizon and writes each member's most recent login
to a CSV report.

Requires SLACK_TOKEN with the users:read, users:read.email and admin scopes.
Settings are read from the environment and, in development, from .env.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		tel, err := otel.Setup(cmd.Context(), cfg.OTel)
		if err != nil {
			return fmt.Errorf("setting up telemetry: %w", err)
		}
		telemetry = tel

		logger.Setup(cfg, verbose)
		slog.DebugContext(cmd.Context(), "lastseen starting", "env", cfg.Env, "command", cmd.Name())
		return nil
	},
}

func newSlackClient(c config.SlackConfig) (slack.Client, error) {
	return slack.New(slack.Config{
		Token:   c.Token,
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
