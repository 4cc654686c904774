package slack

import (
	"errors"
	"fmt"
)

// APIError is returned when the platform reports a failed call, either with
// "ok": false or with a non-2xx status. It is never retried.
type APIError struct {
	Method     string // API method, e.g. "team.accessLogs"
	URL        string // full request URL including query parameters
	Code       string // API error code, e.g. "invalid_auth", or "http_<status>"
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s failed: %s (status %d, url %s)", e.Method, e.Code, e.StatusCode, e.URL)
}

// IsAPIError reports whether err wraps an *APIError with the given code.
// An empty code matches any API error.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return code == "" || apiErr.Code == code
}
