// Package debug holds the process-wide log/slog logger used by the query
// packages and the CLI.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
)

func init() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Init switches logging on or off. When enabled, records at debug level and
// above are written to stderr as text. When disabled, everything is
// discarded.
func Init(enable bool) {
	if enable {
		InitWriter(os.Stderr, slog.LevelDebug)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// InitWriter sends records at level and above to w.
func InitWriter(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { current().Error(msg, args...) }

// With returns a child logger carrying args.
func With(args ...any) *slog.Logger { return current().With(args...) }
