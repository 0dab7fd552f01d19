package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldSessionID = "session_id"
	FieldFactoryID = "factory_id"
	FieldProvider  = "provider"

	// Entities
	FieldKind     = "kind"
	FieldEntityID = "entity_id"
	FieldRealm    = "realm"
	FieldClient   = "client"

	// Operations
	FieldOperation = "operation"
	FieldPhase     = "phase"

	// Counts and timing
	FieldCount      = "count"
	FieldTotalCount = "total_count"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files
	FieldFile = "file"
	FieldDir  = "dir"
)

type contextKey string

const (
	sessionIDKey contextKey = "logger_session_id"
	componentKey contextKey = "logger_component"
)

// WithSessionID adds a session ID to the context for logging
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		fields = append(fields, FieldSessionID, sessionID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, "component", component)
	}

	return fields
}

// LoggerFromContext returns base with fields extracted from context attached.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	base = OrNop(base)
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named child of the global logger.
//
// Example:
//
//	store := store.New[*model.Realm](model.KindRealm, logger.ComponentLogger("store"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
