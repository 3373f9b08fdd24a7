// Package logging configures structured slog logging for the backend
// services and provides the shared field-name vocabulary.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/dataloft-systems/dataloft-backend/pkg/middleware"
)

// Logger wraps slog.Logger with request-context awareness.
type Logger struct {
	*slog.Logger
}

// New creates a Logger at the given level. format is "json" (default) or
// "text".
func New(level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelError,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger carrying the request ID from ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		return l.Logger.With(slog.String("request_id", reqID))
	}
	return l.Logger
}

// With returns a new logger with the given attributes added.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ParseLevel converts a level string ("debug", "info", "warn", "error") to a
// slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault installs l as the process-wide default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}

// Common field names so log lines stay greppable across services.
const (
	FieldService  = "service"
	FieldUserID   = "user_id"
	FieldUsername = "username"
	FieldIP       = "ip"
	FieldError    = "error"
)

func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

func UserID(id string) slog.Attr {
	return slog.String(FieldUserID, id)
}

func Username(name string) slog.Attr {
	return slog.String(FieldUsername, name)
}

func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
