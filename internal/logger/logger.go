// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Options configures the global logger.
type Options struct {
	Debug  bool
	Prefix string
	Output io.Writer // defaults to stderr
}

var (
	mu       sync.RWMutex
	instance = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
)

// Init replaces the global logger. Safe to call more than once.
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          opts.Prefix,
	})

	mu.Lock()
	instance = l
	mu.Unlock()
}

func get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return get().With(keyvals...)
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) {
	get().Debug(message, keyvals...)
}

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) {
	get().Info(message, keyvals...)
}

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) {
	get().Warn(message, keyvals...)
}

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) {
	get().Error(message, keyvals...)
}
