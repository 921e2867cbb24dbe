// Package logger provides the structured logger used across mjconv.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type (
	// LogLevel is a textual log level as accepted by flags and config files.
	LogLevel string

	// Logger defines the interface for structured logging.
	Logger interface {
		Debug(msg string, keyvals ...any)
		Info(msg string, keyvals ...any)
		Warn(msg string, keyvals ...any)
		Error(msg string, keyvals ...any)
		With(keyvals ...any) Logger
	}

	loggerImpl struct {
		charm *charmlog.Logger
	}
)

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// ParseLevel validates a level name. Matching is case-insensitive.
func ParseLevel(s string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return lvl, nil
	default:
		return "", fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
}

func (l LogLevel) charmLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Config controls logger construction.
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	AddSource  bool
	TimeFormat string
}

// DefaultConfig logs info and above as text to stderr, keeping stdout free
// for reports.
func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

// New creates a logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	charm := charmlog.NewWithOptions(out, charmlog.Options{
		ReportCaller:    cfg.AddSource,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.charmLevel(),
	})
	if cfg.JSON {
		charm.SetFormatter(charmlog.JSONFormatter)
	} else {
		charm.SetFormatter(charmlog.TextFormatter)
	}

	return &loggerImpl{charm: charm}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &loggerImpl{charm: charmlog.New(io.Discard)}
}

func (l *loggerImpl) Debug(msg string, keyvals ...any) {
	l.charm.Debug(msg, keyvals...)
}

func (l *loggerImpl) Info(msg string, keyvals ...any) {
	l.charm.Info(msg, keyvals...)
}

func (l *loggerImpl) Warn(msg string, keyvals ...any) {
	l.charm.Warn(msg, keyvals...)
}

func (l *loggerImpl) Error(msg string, keyvals ...any) {
	l.charm.Error(msg, keyvals...)
}

func (l *loggerImpl) With(keyvals ...any) Logger {
	return &loggerImpl{charm: l.charm.With(keyvals...)}
}

type ctxKey struct{}

// ContextWithLogger attaches l to ctx.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or a no-op logger.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	return NewNop()
}
