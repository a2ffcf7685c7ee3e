package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Configure sets the process logger. Development gets a human readable console
// writer, everything else JSON.
func Configure(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stderr
	if env == "development" || env == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	SetOutput(out, level)
}

// SetOutput replaces the log destination (tests point this at a buffer).
func SetOutput(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	base = zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	mu.Unlock()
}

// WithRequestID stores a request id for loggers created from ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for one call chain
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger bound to the request id in ctx
func New(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	mu.RLock()
	zl := base.With().Str("request_id", requestID).Logger()
	mu.RUnlock()
	return &Logger{zl: zl}
}

func (l *Logger) LogError(operation string, err error) {
	l.zl.Error().Str("operation", operation).Err(err).Send()
}

func (l *Logger) LogErrorf(operation string, format string, args ...any) {
	l.zl.Error().Str("operation", operation).Msgf(format, args...)
}

func (l *Logger) LogInfo(operation string, message string) {
	l.zl.Info().Str("operation", operation).Msg(message)
}

func (l *Logger) LogInfof(operation string, format string, args ...any) {
	l.zl.Info().Str("operation", operation).Msgf(format, args...)
}

func (l *Logger) LogWarn(operation string, message string) {
	l.zl.Warn().Str("operation", operation).Msg(message)
}

func (l *Logger) LogWarnf(operation string, format string, args ...any) {
	l.zl.Warn().Str("operation", operation).Msgf(format, args...)
}

// LogDebugf is for per-request chatter that is off by default.
func (l *Logger) LogDebugf(operation string, format string, args ...any) {
	l.zl.Debug().Str("operation", operation).Msgf(format, args...)
}
