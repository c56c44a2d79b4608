// Package debug provides the library-wide trace logger built on log/slog.
// It is used to trace SQL statements sent to the database and calls made
// to the application server.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled bool
)

// Init switches tracing on or off. When enabled, traces are written to
// stderr at debug level; when disabled they are discarded.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if enable {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// SetLogger replaces the trace logger, e.g. to route traces into an
// application's own slog setup.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
	enabled = true
}

// Enabled reports whether tracing is active.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func Debug(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Info(msg, args...)
}

func Error(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Error(msg, args...)
}
