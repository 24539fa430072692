package domain

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// Logger is the structured logging collaborator injected into the transport
// client, the error classifier and the server.
type Logger interface {
	Debug(message string, context map[string]interface{})
	Info(message string, context map[string]interface{})
	Warn(message string, context map[string]interface{})
	Error(message string, err error, context map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

// StructuredLogger writes one structured entry per call through slog.
// Every message, error and string value passes through the redactor.
type StructuredLogger struct {
	logger   *slog.Logger
	redactor *Redactor
}

// NewStructuredLogger creates a logger writing to w. Format is "json" or
// "text"; level is one of debug, info, warn, error.
func NewStructuredLogger(w io.Writer, format, level string, redactor *Redactor) *StructuredLogger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	if redactor == nil {
		redactor = NewRedactor()
	}
	return &StructuredLogger{logger: slog.New(handler), redactor: redactor}
}

// ParseLogLevel converts a level name to a slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *StructuredLogger) Debug(message string, context map[string]interface{}) {
	l.log(slog.LevelDebug, message, nil, context)
}

func (l *StructuredLogger) Info(message string, context map[string]interface{}) {
	l.log(slog.LevelInfo, message, nil, context)
}

func (l *StructuredLogger) Warn(message string, context map[string]interface{}) {
	l.log(slog.LevelWarn, message, nil, context)
}

func (l *StructuredLogger) Error(message string, err error, context map[string]interface{}) {
	l.log(slog.LevelError, message, err, context)
}

func (l *StructuredLogger) log(level slog.Level, message string, err error, fields map[string]interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields)+1)
	if err != nil {
		attrs = append(attrs, slog.String("error", l.redactor.Redact(err.Error())))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if s, ok := v.(string); ok {
			v = l.redactor.Redact(s)
		}
		attrs = append(attrs, slog.Any(k, v))
	}

	l.logger.LogAttrs(ctx, level, l.redactor.Redact(message), attrs...)
}
