package salescube

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/salescube/model"
)

// Logger wraps slog.Logger with salescube-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(name model.TableName) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", string(name)),
	}
}

// LogLoad logs a payload load.
func (l *Logger) LogLoad(ctx context.Context, tables int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"tables", tables,
			"duration", duration,
		)
	}
}

// LogBuild logs an index build for one table.
func (l *Logger) LogBuild(ctx context.Context, name model.TableName, rows, dimensions int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"table", string(name),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index build completed",
			"table", string(name),
			"rows", rows,
			"dimensions", dimensions,
			"duration", duration,
		)
	}
}

// LogQuery logs a query.
func (l *Logger) LogQuery(ctx context.Context, name model.TableName, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"table", string(name),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"table", string(name),
			"rows", rows,
		)
	}
}
