// Package logger holds the process-wide structured logger used by emheap
// packages and tools.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// EnvLogAlloc enables allocator tracing on stderr when set to any non-empty value.
const EnvLogAlloc = "EMHEAP_LOG_ALLOC"

// L is the global logger instance. It discards all output unless Init is called
// or EMHEAP_LOG_ALLOC is set in the environment.
var L = defaultLogger()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled
	JSON    bool       // Emit JSON records instead of text
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) {
	L = New(opts)
}

// New builds a logger from opts without touching the global instance.
func New(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func defaultLogger() *slog.Logger {
	if os.Getenv(EnvLogAlloc) != "" {
		return New(Options{Enabled: true, Level: slog.LevelDebug})
	}
	return New(Options{})
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
