package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a type for context keys
type contextKey string

// runIDContextKey is the key under which the pipeline run ID is stored.
const runIDContextKey contextKey = "run_id"

// NewRunID creates a new unique run ID using UUID v4.
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID returns a context carrying the given run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// ContextWithRunID returns a context carrying a freshly generated run ID.
func ContextWithRunID(ctx context.Context) context.Context {
	return WithRunID(ctx, NewRunID())
}

// GetRunID extracts the run ID from the context, or "" when absent.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDContextKey).(string); ok {
		return id
	}
	return ""
}

// LoggerWithContext returns the global logger with the run_id attached.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}
