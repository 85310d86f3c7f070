package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for batch run identifiers.
	RunIDKey contextKey = "run_id"

	// RuleKey is the context key for rule names.
	RuleKey contextKey = "rule"

	// RowKey is the context key for the 1-based row number within a batch.
	RowKey contextKey = "row"

	// SourceKey is the context key for the input sheet location.
	SourceKey contextKey = "source"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithRule adds a rule name to the context.
func WithRule(ctx context.Context, rule string) context.Context {
	return context.WithValue(ctx, RuleKey, rule)
}

// GetRule retrieves the rule name from the context.
func GetRule(ctx context.Context) string {
	if rule, ok := ctx.Value(RuleKey).(string); ok {
		return rule
	}
	return ""
}

// WithRow adds a row number to the context.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, RowKey, row)
}

// GetRow retrieves the row number from the context. Zero means unset.
func GetRow(ctx context.Context) int {
	if row, ok := ctx.Value(RowKey).(int); ok {
		return row
	}
	return 0
}

// WithSource adds an input location to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the input location from the context.
func GetSource(ctx context.Context) string {
	if source, ok := ctx.Value(SourceKey).(string); ok {
		return source
	}
	return ""
}

// contextAttrs extracts common fields from context for logging.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String(string(RunIDKey), runID))
	}
	if rule := GetRule(ctx); rule != "" {
		attrs = append(attrs, slog.String(string(RuleKey), rule))
	}
	if row := GetRow(ctx); row > 0 {
		attrs = append(attrs, slog.Int(string(RowKey), row))
	}
	if source := GetSource(ctx); source != "" {
		attrs = append(attrs, slog.String(string(SourceKey), source))
	}

	return attrs
}
