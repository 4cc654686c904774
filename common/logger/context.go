package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The report service sets RunID once per run and the walker narrows Page and
// Before per request, so every log line from a stage carries its position.
type LogFields struct {
	RunID     *int64 // Snowflake ID of the current run
	Page      *int   // Access log page being fetched
	Before    *int64 // Access log cursor (epoch seconds) for the current iteration
	Component string // Component name, e.g. "lastseen.service.walker"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.Page != nil {
		result.Page = new.Page
	}
	if new.Before != nil {
		result.Before = new.Before
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Page: logger.Ptr(page)})
func Ptr[T any](v T) *T {
	return &v
}
