// Package observability provides store-operation logging and domain metrics.
package observability

import (
	"context"
	"log/slog"

	"boardclient/internal/middleware"
)

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableStoreLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableStoreLogging: true,
}

// StoreLogger provides structured logging for backend store operations.
type StoreLogger struct {
	tableName string
	logger    *slog.Logger
}

// NewStoreLogger creates a new StoreLogger for the given table.
func NewStoreLogger(tableName string) *StoreLogger {
	return &StoreLogger{
		tableName: tableName,
		logger:    middleware.Logger,
	}
}

func (l *StoreLogger) log(ctx context.Context, operation string, fields map[string]interface{}) {
	if !Config.EnableStoreLogging {
		return
	}
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.DebugContext(ctx, "store "+operation, attrs...)
}

// LogRead logs a select against the store.
func (l *StoreLogger) LogRead(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "select", fields)
}

// LogCreate logs an insert.
func (l *StoreLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "insert", fields)
}

// LogUpdate logs an update.
func (l *StoreLogger) LogUpdate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a delete.
func (l *StoreLogger) LogDelete(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "delete", fields)
}

// LogError logs a failed store call and counts it.
func (l *StoreLogger) LogError(ctx context.Context, err error, operation string) {
	StoreErrors.WithLabelValues(l.tableName, operation).Inc()
	if !Config.EnableStoreLogging {
		return
	}
	l.logger.ErrorContext(ctx, "store error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
