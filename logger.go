package placewalk

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with placewalk-specific context.
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

// WithFilter adds the canonical filter key to the logger.
func (l *Logger) WithFilter(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("filter", key),
	}
}

// WithTarget adds a proximity target field to the logger.
func (l *Logger) WithTarget(target string) *Logger {
	return &Logger{
		Logger: l.Logger.With("target", target),
	}
}

// LogFirstPage logs a first-page load.
func (l *Logger) LogFirstPage(ctx context.Context, filterKey string, entries int, fromCache bool) {
	l.DebugContext(ctx, "first page loaded",
		"filter", filterKey,
		"entries", entries,
		"from_cache", fromCache,
	)
}

// LogLoadMore logs a follow-up page load.
func (l *Logger) LogLoadMore(ctx context.Context, filterKey string, entries int, hasMore bool) {
	l.DebugContext(ctx, "page loaded",
		"filter", filterKey,
		"entries", entries,
		"has_more", hasMore,
	)
}

// LogRefresh logs a cache refresh.
func (l *Logger) LogRefresh(ctx context.Context, filterKey string) {
	l.InfoContext(ctx, "catalog refreshed",
		"filter", filterKey,
	)
}

// LogVisible logs a filter pipeline run.
func (l *Logger) LogVisible(ctx context.Context, in, out int) {
	l.DebugContext(ctx, "visibility computed",
		"in", in,
		"out", out,
	)
}

// LogSnapshot logs a snapshot save or restore.
func (l *Logger) LogSnapshot(ctx context.Context, op string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"op", op,
			"entries", entries,
		)
	}
}
