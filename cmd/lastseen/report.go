package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"basegraph.app/lastseen/internal/report"
	"basegraph.app/lastseen/internal/service"
)

const summaryLimit = 10

var (
	horizonDays  int
	inactiveDays int
	outputPath   string
	rawOutput    string
	quiet        bool
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write the last login report",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("horizon-days") {
				cfg.Report.HorizonDays = horizonDays
			}
			if flags.Changed("inactive-days") {
				cfg.Report.InactiveDays = inactiveDays
			}
			if flags.Changed("out") {
				cfg.Report.OutputPath = outputPath
			}
			if flags.Changed("raw-out") {
				cfg.Report.RawOutputPath = rawOutput
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := newSlackClient(cfg.Slack)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			now := time.Now()
			horizon := cfg.Report.Horizon(now)

			result, err := service.NewServices(client).Reports().Run(ctx, service.ReportOptions{
				Horizon:       horizon,
				OutputPath:    cfg.Report.OutputPath,
				RawOutputPath: cfg.Report.RawOutputPath,
			})
			if err != nil {
				slog.ErrorContext(ctx, "report run failed", "error", err)
				return err
			}

			if !quiet {
				summary := report.Summarize(result.Members, now, horizon, cfg.Report.InactiveDays, summaryLimit)
				fmt.Fprint(cmd.OutOrStdout(), report.RenderSummary(summary))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d members to %s\n", result.RowsWritten, result.OutputPath)
			if result.RawOutputPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d access log entries to %s\n", result.RawRowsWritten, result.RawOutputPath)
			}
			return nil
		},
	}
}

func init() {
	cmd := newReportCmd()
	cmd.Flags().IntVar(
		&horizonDays,
		"horizon-days",
		180,
		"How many days back to search the access log (REPORT_HORIZON_DAYS)",
	)
	cmd.Flags().IntVar(
		&inactiveDays,
		"inactive-days",
		90,
		"Days without a login after which a member counts as inactive (REPORT_INACTIVE_DAYS)",
	)
	cmd.Flags().StringVarP(
		&outputPath,
		"out",
		"o",
		"last_logins.csv",
		"Path of the report (REPORT_OUTPUT)",
	)
	cmd.Flags().StringVar(
		&rawOutput,
		"raw-out",
		"",
		"Also dump the raw access log entries to this path (REPORT_RAW_OUTPUT)",
	)
	cmd.Flags().BoolVarP(
		&quiet,
		"quiet",
		"q",
		false,
		"Do not print the inactivity summary",
	)
	rootCmd.AddCommand(cmd)
}
