package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel   OTelConfig
	Slack  SlackConfig
	Report ReportConfig
	Env    string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type SlackConfig struct {
	Token          string
	BaseURL        string
	RequestTimeout time.Duration
}

type ReportConfig struct {
	OutputPath    string
	RawOutputPath string // empty disables the raw access log dump
	HorizonDays   int
	InactiveDays  int
}

const DefaultSlackBaseURL = "https://slack.com/api"

// Load loads configuration from environment variables.
// In development, a .env file in the working directory is loaded first;
// variables already present in the environment win. Malformed numbers and
// durations are reported together in the returned error.
func Load() (Config, error) {
	if getEnv("LASTSEEN_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	var errs []error
	cfg := Config{
		Env: getEnv("LASTSEEN_ENV", "development"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "lastseen"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Slack: SlackConfig{
			Token:          getEnv("SLACK_TOKEN", ""),
			BaseURL:        getEnv("SLACK_API_URL", DefaultSlackBaseURL),
			RequestTimeout: getEnvDuration("SLACK_REQUEST_TIMEOUT", 30*time.Second, &errs),
		},
		Report: ReportConfig{
			OutputPath:    getEnv("REPORT_OUTPUT", "last_logins.csv"),
			RawOutputPath: getEnv("REPORT_RAW_OUTPUT", ""),
			HorizonDays:   getEnvInt("REPORT_HORIZON_DAYS", 180, &errs),
			InactiveDays:  getEnvInt("REPORT_INACTIVE_DAYS", 90, &errs),
		},
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks the values a run cannot do without. It is separate from
// Load so CLI flags can override the environment first.
func (c Config) Validate() error {
	if c.Slack.Token == "" {
		return fmt.Errorf("SLACK_TOKEN is required")
	}
	if c.Slack.BaseURL == "" {
		return fmt.Errorf("SLACK_API_URL must not be empty")
	}
	if c.Slack.RequestTimeout < 0 {
		return fmt.Errorf("SLACK_REQUEST_TIMEOUT must not be negative, got %s", c.Slack.RequestTimeout)
	}
	if c.Report.HorizonDays <= 0 {
		return fmt.Errorf("horizon must be at least one day, got %d", c.Report.HorizonDays)
	}
	if c.Report.InactiveDays <= 0 {
		return fmt.Errorf("inactive threshold must be at least one day, got %d", c.Report.InactiveDays)
	}
	if c.Report.OutputPath == "" {
		return fmt.Errorf("report output path is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c ReportConfig) RawOutputEnabled() bool {
	return c.RawOutputPath != ""
}

// Horizon returns the oldest instant the access log walk considers.
func (c ReportConfig) Horizon(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.HorizonDays)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a duration such as 30s", key, value))
		return fallback
	}
	return d
}
