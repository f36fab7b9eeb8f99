package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for structured logging across wbwatch.
const (
	// Identity
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldSymbol    = "symbol"

	// Streams and records
	FieldStream         = "stream"
	FieldRecordID       = "record_id"
	FieldMarker         = "marker"
	FieldPreviousMarker = "previous_marker"
	FieldAction         = "action"

	// Outbound calls
	FieldMethod  = "method"
	FieldURL     = "url"
	FieldAttempt = "attempt"
	FieldStatus  = "status"
	FieldPage    = "page"
	FieldBackoff = "backoff"
	FieldBody    = "body"

	// Results
	FieldCount      = "count"
	FieldTotalCount = "total_count"
	FieldAlerts     = "alerts"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"

	// Persistence
	FieldPath    = "path"
	FieldBackend = "backend"
)

type contextKey string

const (
	runIDKey  contextKey = "logger_run_id"
	streamKey contextKey = "logger_stream"
)

// WithRunID attaches the run identifier to ctx for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithStream attaches the stream name to ctx for logging
func WithStream(ctx context.Context, stream string) context.Context {
	return context.WithValue(ctx, streamKey, stream)
}

// RunIDFromContext returns the run identifier carried by ctx, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if stream, ok := ctx.Value(streamKey).(string); ok && stream != "" {
		fields = append(fields, FieldStream, stream)
	}

	return fields
}

// FromContext decorates base with the fields carried by ctx. A nil base
// falls back to the global Logger.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// Constructors take the result by injection:
//
//	src := source.NewProjects(cfg, client, logger.ComponentLogger("source.projects"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
