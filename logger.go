package rett

import (
	"context"
	"log/slog"
	"os"

	"github.com/lereldarion/rett/element"
)

// Logger wraps slog.Logger with rett-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithIndex adds an element index field to the logger.
func (l *Logger) WithIndex(i element.Index) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", uint32(i)),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogUseAtom logs an atom insert-or-resolve operation.
func (l *Logger) LogUseAtom(ctx context.Context, i element.Index, created bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "use atom failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "atom resolved",
			"index", uint32(i),
			"created", created,
		)
	}
}

// LogUseLink logs a link insert-or-resolve operation.
func (l *Logger) LogUseLink(ctx context.Context, i element.Index, created bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "use link failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "link resolved",
			"index", uint32(i),
			"created", created,
		)
	}
}

// LogCreateEntity logs an entity creation.
func (l *Logger) LogCreateEntity(ctx context.Context, i element.Index) {
	l.DebugContext(ctx, "entity created",
		"index", uint32(i),
	)
}

// LogSetDescription logs a description update.
func (l *Logger) LogSetDescription(ctx context.Context, i element.Index, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set description failed",
			"index", uint32(i),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "description updated",
			"index", uint32(i),
		)
	}
}

// LogRemove logs an element removal.
func (l *Logger) LogRemove(ctx context.Context, i element.Index, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"index", uint32(i),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"index", uint32(i),
		)
	}
}

// LogSnapshotSave logs a snapshot save operation.
func (l *Logger) LogSnapshotSave(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogSnapshotLoad logs a snapshot load operation.
func (l *Logger) LogSnapshotLoad(ctx context.Context, name string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
			"elements", elements,
		)
	}
}
