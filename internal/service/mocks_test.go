package service_test

import (
	"context"
	"sync"

	"basegraph.app/lastseen/internal/model"
	"basegraph.app/lastseen/internal/slack"
)

type mockSlackClient struct {
	listMembersFn func(ctx context.Context) ([]model.Member, error)
	accessLogsFn  func(ctx context.Context, q slack.AccessLogQuery) (*slack.AccessLogPage, error)

	mu      sync.Mutex
	queries []slack.AccessLogQuery
}

func (m *mockSlackClient) ListMembers(ctx context.Context) ([]model.Member, error) {
	if m.listMembersFn != nil {
		return m.listMembersFn(ctx)
	}
	return nil, nil
}

func (m *mockSlackClient) AccessLogs(ctx context.Context, q slack.AccessLogQuery) (*slack.AccessLogPage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.accessLogsFn != nil {
		return m.accessLogsFn(ctx, q)
	}
	return &slack.AccessLogPage{}, nil
}

func (m *mockSlackClient) accessLogQueries() []slack.AccessLogQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]slack.AccessLogQuery(nil), m.queries...)
}

// servePages returns the given pages one per call, then empty pages.
func servePages(pages ...[]model.AccessLog) func(context.Context, slack.AccessLogQuery) (*slack.AccessLogPage, error) {
	var mu sync.Mutex
	next := 0
	return func(_ context.Context, q slack.AccessLogQuery) (*slack.AccessLogPage, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(pages) {
			return &slack.AccessLogPage{Paging: slack.Paging{Page: q.Page}}, nil
		}
		page := pages[next]
		next++
		return &slack.AccessLogPage{
			Logins: page,
			Paging: slack.Paging{Count: len(page), Page: q.Page},
		}, nil
	}
}

func staticMembers(members ...model.Member) func(context.Context) ([]model.Member, error) {
	return func(context.Context) ([]model.Member, error) {
		return members, nil
	}
}
