package slack

import "basegraph.app/lastseen/internal/model"

const (
	MethodUsersList  = "users.list"
	MethodAccessLogs = "team.accessLogs"

	// MaxAccessLogPageSize and MaxAccessLogPage are the API's hard limits
	// for team.accessLogs.
	MaxAccessLogPageSize = 1000
	MaxAccessLogPage     = 100
)

type AccessLogQuery struct {
	Count  int   // entries per page, at most MaxAccessLogPageSize
	Page   int   // 1-based, at most MaxAccessLogPage
	Before int64 // epoch seconds; only entries at or before it are returned
}

type AccessLogPage struct {
	Logins []model.AccessLog
	Paging Paging
}

type Paging struct {
	Count int `json:"count"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// envelope is the part every Web API response shares.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e envelope) ok() bool          { return e.OK }
func (e envelope) errorCode() string { return e.Error }

type apiResponse interface {
	ok() bool
	errorCode() string
}

type usersListResponse struct {
	envelope
	Members []model.Member `json:"members"`
}

type accessLogsResponse struct {
	envelope
	Logins []model.AccessLog `json:"logins"`
	Paging Paging            `json:"paging"`
}
