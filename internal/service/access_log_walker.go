package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/lastseen/common/logger"
	"basegraph.app/lastseen/internal/model"
	"basegraph.app/lastseen/internal/slack"
	"golang.org/x/time/rate"
)

// RequestInterval paces access log requests to the Tier 2 limit of 20
// requests per minute.
const RequestInterval = 3 * time.Second

const (
	accessLogPageSize = slack.MaxAccessLogPageSize
	pagesPerPass      = slack.MaxAccessLogPage
)

// ErrCursorStalled is returned when a full pass of pages did not move the
// access log cursor back in time, so another pass would fetch the same data.
var ErrCursorStalled = errors.New("access log cursor did not advance")

// EntryObserver sees every access log entry the walk applies, in API order.
type EntryObserver func(entry model.AccessLog)

type AccessLogWalker interface {
	// BackfillLastLogins walks the access log from now back to horizon and
	// raises each member's LastLogin to the newest DateLast seen. It takes
	// ownership of members for the duration of the call and returns it.
	BackfillLastLogins(ctx context.Context, members *model.WorkingSet, horizon time.Time, observers ...EntryObserver) (*model.WorkingSet, error)
}

type WalkerOption func(*accessLogWalker)

// WithLimiter replaces the request pacing limiter.
func WithLimiter(l *rate.Limiter) WalkerOption {
	return func(w *accessLogWalker) {
		w.limiter = l
	}
}

// WithClock replaces the source of the initial cursor.
func WithClock(now func() time.Time) WalkerOption {
	return func(w *accessLogWalker) {
		w.now = now
	}
}

type accessLogWalker struct {
	client  slack.Client
	limiter *rate.Limiter
	now     func() time.Time
}

func NewAccessLogWalker(client slack.Client, opts ...WalkerOption) AccessLogWalker {
	w := &accessLogWalker{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(RequestInterval), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type stopReason string

const (
	stopExhausted stopReason = "log_exhausted"
	stopHorizon   stopReason = "horizon_reached"
)

type walkStats struct {
	pages   int
	passes  int
	entries int
	updates int
}

func (w *accessLogWalker) BackfillLastLogins(ctx context.Context, members *model.WorkingSet, horizon time.Time, observers ...EntryObserver) (*model.WorkingSet, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "lastseen.service.walker"})
	sc := logger.StartSpan(ctx, "service.backfill_last_logins")
	defer sc.End()
	ctx = sc.Context()

	horizonEpoch := horizon.Unix()
	cursor := w.now().Unix()
	var stats walkStats

	finish := func(reason stopReason) (*model.WorkingSet, error) {
		slog.InfoContext(ctx, "access log walk finished",
			"reason", reason,
			"passes", stats.passes,
			"pages", stats.pages,
			"entries", stats.entries,
			"updates", stats.updates,
			"cursor", cursor,
			"horizon", horizonEpoch,
		)
		return members, nil
	}

	for {
		// Every page of a pass shares the cursor the pass started from, so
		// page numbers stay aligned with one result set.
		before := cursor
		stats.passes++
		passCtx := logger.WithLogFields(ctx, logger.LogFields{Before: logger.Ptr(before)})

		for page := 1; page <= pagesPerPass; page++ {
			pageCtx := logger.WithLogFields(passCtx, logger.LogFields{Page: logger.Ptr(page)})

			if err := w.limiter.Wait(pageCtx); err != nil {
				sc.RecordError(err)
				return nil, fmt.Errorf("waiting to fetch access logs page %d: %w", page, err)
			}

			resp, err := w.client.AccessLogs(pageCtx, slack.AccessLogQuery{
				Count:  accessLogPageSize,
				Page:   page,
				Before: before,
			})
			if err != nil {
				sc.RecordError(err)
				slog.ErrorContext(pageCtx, "failed to fetch access logs", "error", err)
				return nil, fmt.Errorf("fetching access logs page %d before %d: %w", page, before, err)
			}
			stats.pages++

			if len(resp.Logins) == 0 {
				return finish(stopExhausted)
			}

			for _, entry := range resp.Logins {
				cursor = entry.DateFirst
				if entry.DateFirst < horizonEpoch {
					return finish(stopHorizon)
				}
				stats.entries++
				for _, observe := range observers {
					observe(entry)
				}
				if members.ObserveLogin(entry.UserID, entry.DateLast) {
					stats.updates++
				}
			}

			slog.DebugContext(pageCtx, "access log page applied",
				"entries", len(resp.Logins),
				"cursor", cursor,
			)
		}

		if cursor >= before {
			err := fmt.Errorf("%w: still at %d after %d pages", ErrCursorStalled, cursor, pagesPerPass)
			sc.RecordError(err)
			return nil, err
		}

		slog.InfoContext(passCtx, "page budget exhausted, continuing from cursor", "cursor", cursor)
	}
}
