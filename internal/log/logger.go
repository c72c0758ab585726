package log

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/felixgeelhaar/repo-preflight/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog *slog.Logger
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level: config.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	default:
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	}

	l := slog.New(handler)
	if config.ServiceName != "" {
		l = l.With("service", config.ServiceName)
	}
	if config.ServiceVersion != "" {
		l = l.With("version", config.ServiceVersion)
	}

	return &Logger{slog: l}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// WithError adds error details to the logger.
// A PreflightError anywhere in the chain contributes its error_code,
// suggestions and docs_url.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	var pfErr *errors.PreflightError
	if stderrors.As(err, &pfErr) {
		args := []any{
			"error", err.Error(),
			"error_code", string(pfErr.Code),
		}

		if len(pfErr.Suggestions) > 0 {
			args = append(args, "suggestions", pfErr.Suggestions)
		}

		if pfErr.DocsURL != "" {
			args = append(args, "docs_url", pfErr.DocsURL)
		}

		if pfErr.Cause != nil {
			args = append(args, "cause", pfErr.Cause.Error())
		}

		return l.With(args...)
	}

	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// DebugContext logs a debug message with context
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slog.DebugContext(ctx, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// WarnContext logs a warning message with context
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slog.WarnContext(ctx, msg, args...)
}
