package service

import (
	"basegraph.app/lastseen/internal/slack"
)

type Services struct {
	client        slack.Client
	walkerOptions []WalkerOption
}

func NewServices(client slack.Client, walkerOptions ...WalkerOption) *Services {
	return &Services{
		client:        client,
		walkerOptions: walkerOptions,
	}
}

func (s *Services) Members() MemberLister {
	return NewMemberLister(s.client)
}

func (s *Services) AccessLogs() AccessLogWalker {
	return NewAccessLogWalker(s.client, s.walkerOptions...)
}

func (s *Services) Reports() ReportService {
	return NewReportService(s.Members(), s.AccessLogs())
}
