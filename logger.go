package obfptr

import (
	"log/slog"
	"os"

	"github.com/hupe1980/obfptr/transform"
)

// Logger wraps slog.Logger with pointer lifecycle helpers.
// It logs method, type, size and the encoded value, never keys or decoded
// addresses.
type Logger struct {
	*slog.Logger
}

var noopLogger = NoopLogger()

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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogConstruct logs the creation of an obfuscated pointer.
func (l *Logger) LogConstruct(typeName string, method transform.Method, size uintptr, encoded uint64, err error) {
	if err != nil {
		l.Error("construct failed",
			"type", typeName,
			"size", size,
			"error", err,
		)
	} else {
		l.Debug("construct completed",
			"type", typeName,
			"method", method.String(),
			"size", size,
			"encoded", encoded,
		)
	}
}

// LogDestroy logs the destruction of an obfuscated pointer.
func (l *Logger) LogDestroy(typeName string, size uintptr, err error) {
	if err != nil {
		l.Error("destroy failed",
			"type", typeName,
			"size", size,
			"error", err,
		)
	} else {
		l.Debug("destroy completed",
			"type", typeName,
			"size", size,
		)
	}
}

// LogRekey logs a key rotation.
func (l *Logger) LogRekey(typeName string, method transform.Method, err error) {
	if err != nil {
		l.Error("rekey failed",
			"type", typeName,
			"error", err,
		)
	} else {
		l.Debug("rekey completed",
			"type", typeName,
			"method", method.String(),
		)
	}
}

// LogLeak logs a pointer reclaimed by the garbage collector backstop.
func (l *Logger) LogLeak(typeName string, size uintptr, err error) {
	if err != nil {
		l.Error("leaked pointer could not be freed",
			"type", typeName,
			"size", size,
			"error", err,
		)
	} else {
		l.Warn("pointer dropped without Destroy, reclaimed by cleanup",
			"type", typeName,
			"size", size,
		)
	}
}
