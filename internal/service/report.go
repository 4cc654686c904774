package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"basegraph.app/lastseen/common/id"
	"basegraph.app/lastseen/common/logger"
	"basegraph.app/lastseen/internal/model"
	"basegraph.app/lastseen/internal/report"
)

type ReportService interface {
	// Run lists active members, backfills their last logins from the access
	// log and writes the report. Nothing is written unless every API call
	// succeeded.
	Run(ctx context.Context, opts ReportOptions) (*RunResult, error)
	// ExportMembers writes the active member directory without walking the
	// access log.
	ExportMembers(ctx context.Context, outputPath string) (*RunResult, error)
}

type ReportOptions struct {
	Horizon       time.Time
	OutputPath    string
	RawOutputPath string // empty skips the raw access log dump
}

type RunResult struct {
	Members        *model.WorkingSet
	OutputPath     string
	RawOutputPath  string
	RunID          int64
	RowsWritten    int
	RawRowsWritten int
}

type reportService struct {
	members MemberLister
	walker  AccessLogWalker
}

func NewReportService(members MemberLister, walker AccessLogWalker) ReportService {
	return &reportService{
		members: members,
		walker:  walker,
	}
}

func (s *reportService) Run(ctx context.Context, opts ReportOptions) (*RunResult, error) {
	ctx, result, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	sc := logger.StartSpan(ctx, "service.report_run")
	defer sc.End()
	ctx = sc.Context()

	slog.InfoContext(ctx, "report run started",
		"horizon", opts.Horizon.UTC().Format(time.RFC3339),
		"output", opts.OutputPath,
	)

	ws, err := s.members.FetchActiveMembers(ctx)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	var raw []model.AccessLog
	var observers []EntryObserver
	if opts.RawOutputPath != "" {
		observers = append(observers, func(entry model.AccessLog) {
			raw = append(raw, entry)
		})
	}

	ws, err = s.walker.BackfillLastLogins(ctx, ws, opts.Horizon, observers...)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("backfilling last logins: %w", err)
	}
	result.Members = ws

	// Stage both files before publishing either.
	rows := report.FormatLastLogins(ws)
	reportFile, err := report.StageCSV(opts.OutputPath, rows)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("writing last login report: %w", err)
	}
	defer reportFile.Discard()

	var rawFile *report.StagedFile
	if opts.RawOutputPath != "" {
		if len(raw) == 0 {
			slog.WarnContext(ctx, "no access log entries within horizon, skipping raw dump",
				"raw_output", opts.RawOutputPath,
			)
		} else {
			rawFile, err = report.StageCSV(opts.RawOutputPath, report.FormatAccessLogs(raw))
			if err != nil {
				sc.RecordError(err)
				return nil, fmt.Errorf("writing raw access log dump: %w", err)
			}
			defer rawFile.Discard()
		}
	}

	if rawFile != nil {
		if err := rawFile.Commit(); err != nil {
			sc.RecordError(err)
			return nil, fmt.Errorf("writing raw access log dump: %w", err)
		}
		result.RawOutputPath = rawFile.Path()
		result.RawRowsWritten = len(raw)
	}
	if err := reportFile.Commit(); err != nil {
		if rawFile != nil {
			_ = os.Remove(rawFile.Path())
		}
		sc.RecordError(err)
		return nil, fmt.Errorf("writing last login report: %w", err)
	}
	result.OutputPath = opts.OutputPath
	result.RowsWritten = len(rows)

	slog.InfoContext(ctx, "report run finished",
		"members", ws.Len(),
		"with_logins", ws.WithLogins(),
		"rows", result.RowsWritten,
		"raw_rows", result.RawRowsWritten,
	)
	return result, nil
}

func (s *reportService) ExportMembers(ctx context.Context, outputPath string) (*RunResult, error) {
	ctx, result, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	sc := logger.StartSpan(ctx, "service.export_members")
	defer sc.End()
	ctx = sc.Context()

	ws, err := s.members.FetchActiveMembers(ctx)
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}
	result.Members = ws

	rows := report.FormatMembers(ws)
	if err := report.WriteCSV(outputPath, rows); err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("writing member directory: %w", err)
	}
	result.OutputPath = outputPath
	result.RowsWritten = len(rows)

	slog.InfoContext(ctx, "member directory exported", "rows", len(rows), "output", outputPath)
	return result, nil
}

func (s *reportService) begin(ctx context.Context) (context.Context, *RunResult, error) {
	runID, err := id.NewRunID()
	if err != nil {
		return nil, nil, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		Component: "lastseen.service.report",
	})
	return ctx, &RunResult{RunID: runID}, nil
}
