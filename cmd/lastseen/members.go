package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"basegraph.app/lastseen/internal/service"
)

var membersOutput string

func newMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "Write the active member directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := newSlackClient(cfg.Slack)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := service.NewServices(client).Reports().ExportMembers(ctx, membersOutput)
			if err != nil {
				slog.ErrorContext(ctx, "member export failed", "error", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d members to %s\n", result.RowsWritten, result.OutputPath)
			return nil
		},
	}
}

func init() {
	cmd := newMembersCmd()
	cmd.Flags().StringVarP(
		&membersOutput,
		"out",
		"o",
		"members.csv",
		"Path of the member directory",
	)
	rootCmd.AddCommand(cmd)
}
