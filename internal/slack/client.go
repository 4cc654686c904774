package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"basegraph.app/lastseen/internal/model"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 64 << 20

// Client covers the two Web API methods the audit needs.
type Client interface {
	// ListMembers returns the full member directory in one call.
	ListMembers(ctx context.Context) ([]model.Member, error)
	// AccessLogs returns one page of access log entries, most recent first.
	AccessLogs(ctx context.Context, q AccessLogQuery) (*AccessLogPage, error)
}

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration // per request; zero means no timeout

	// HTTPClient overrides the instrumented default client. Timeout is
	// ignored when set.
	HTTPClient *http.Client
}

type client struct {
	http    *http.Client
	baseURL string
	token   string
}

func New(cfg Config) (Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing slack base url %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
	}, nil
}

func (c *client) ListMembers(ctx context.Context) ([]model.Member, error) {
	var resp usersListResponse
	if err := c.get(ctx, MethodUsersList, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *client) AccessLogs(ctx context.Context, q AccessLogQuery) (*AccessLogPage, error) {
	if q.Count <= 0 || q.Count > MaxAccessLogPageSize {
		return nil, fmt.Errorf("access log page size %d out of range 1..%d", q.Count, MaxAccessLogPageSize)
	}
	if q.Page <= 0 || q.Page > MaxAccessLogPage {
		return nil, fmt.Errorf("access log page %d out of range 1..%d", q.Page, MaxAccessLogPage)
	}

	params := url.Values{}
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("page", strconv.Itoa(q.Page))
	if q.Before > 0 {
		params.Set("before", strconv.FormatInt(q.Before, 10))
	}

	var resp accessLogsResponse
	if err := c.get(ctx, MethodAccessLogs, params, &resp); err != nil {
		return nil, err
	}
	return &AccessLogPage{
		Logins: resp.Logins,
		Paging: resp.Paging,
	}, nil
}

func (c *client) get(ctx context.Context, method string, params url.Values, out apiResponse) error {
	endpoint, err := url.JoinPath(c.baseURL, method)
	if err != nil {
		return fmt.Errorf("building %s url: %w", method, err)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	slog.DebugContext(ctx, "slack api call",
		"method", method,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	decodeErr := json.Unmarshal(body, out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := "http_" + strconv.Itoa(resp.StatusCode)
		if decodeErr == nil && out.errorCode() != "" {
			code = out.errorCode()
		}
		return &APIError{Method: method, URL: endpoint, Code: code, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding %s response: %w", method, decodeErr)
	}
	if !out.ok() {
		code := out.errorCode()
		if code == "" {
			code = "unknown_error"
		}
		return &APIError{Method: method, URL: endpoint, Code: code, StatusCode: resp.StatusCode}
	}

	return nil
}
