package flexquery

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with flexquery-specific context.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithQueryID adds a query ID field to the logger.
func (l *Logger) WithQueryID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query_id", id),
	}
}

// WithQuery adds the textual query to the logger.
func (l *Logger) WithQuery(q string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", q),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, total, returned int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"total", total,
			"returned", returned,
			"duration", duration,
		)
	}
}

// LogValidation logs a rejected query.
func (l *Logger) LogValidation(ctx context.Context, err error) {
	l.WarnContext(ctx, "query validation failed",
		"error", err,
	)
}

// LogEvaluation logs how many documents a search evaluated.
func (l *Logger) LogEvaluation(ctx context.Context, evaluated, skipped, chunks int) {
	l.DebugContext(ctx, "documents evaluated",
		"evaluated", evaluated,
		"skipped", skipped,
		"chunks", chunks,
	)
}

// LogRejected logs a search refused by admission control.
func (l *Logger) LogRejected(ctx context.Context, err error) {
	l.WarnContext(ctx, "search rejected",
		"error", err,
	)
}
