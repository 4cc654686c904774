package service

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/lastseen/common/logger"
	"basegraph.app/lastseen/internal/model"
	"basegraph.app/lastseen/internal/slack"
)

type MemberLister interface {
	// FetchActiveMembers returns the working set of active members, each
	// with LastLogin set to model.NoLogin.
	FetchActiveMembers(ctx context.Context) (*model.WorkingSet, error)
}

type memberLister struct {
	client slack.Client
}

func NewMemberLister(client slack.Client) MemberLister {
	return &memberLister{client: client}
}

func (l *memberLister) FetchActiveMembers(ctx context.Context) (*model.WorkingSet, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "lastseen.service.members"})
	sc := logger.StartSpan(ctx, "service.fetch_active_members")
	defer sc.End()
	ctx = sc.Context()

	directory, err := l.client.ListMembers(ctx)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "failed to list members", "error", err)
		return nil, fmt.Errorf("listing members: %w", err)
	}

	active := make([]model.Member, 0, len(directory))
	var deleted, bots int
	for _, m := range directory {
		switch {
		case m.Deleted:
			deleted++
			continue
		case m.IsBot || m.ID == model.SlackbotID:
			bots++
			continue
		}
		m.LastLogin = model.NoLogin
		active = append(active, m)
	}

	ws := model.NewWorkingSet(active)
	slog.InfoContext(ctx, "member directory fetched",
		"total", len(directory),
		"active", ws.Len(),
		"deleted", deleted,
		"bots", bots,
	)
	return ws, nil
}
