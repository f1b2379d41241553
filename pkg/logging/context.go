package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	loggerKey contextKey = iota
	correlationIDKey
)

// Field names shared by every refresh log line.
const (
	FieldProvider      = "provider"
	FieldTaskID        = "task_id"
	FieldCorrelationID = "correlation_id"
	FieldCollection    = "collection"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithField adds a single string field to the logger in the context.
func WithField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithProvider tags log lines with the provider name.
func WithProvider(ctx context.Context, provider string) context.Context {
	return WithField(ctx, FieldProvider, provider)
}

// WithTask tags log lines with the scheduler task id.
func WithTask(ctx context.Context, taskID string) context.Context {
	return WithField(ctx, FieldTaskID, taskID)
}

// WithCollection tags log lines with the collection being built.
func WithCollection(ctx context.Context, collection string) context.Context {
	return WithField(ctx, FieldCollection, collection)
}

// WithCorrelationID stores a per-cycle correlation id and tags the logger with it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, correlationIDKey, id)
	return WithField(ctx, FieldCorrelationID, id)
}

// CorrelationID extracts the correlation id from context.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}
