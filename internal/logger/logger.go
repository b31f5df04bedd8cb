// Package logger provides process-wide structured logging for docrag.
// It wraps zerolog behind a small printf-style API so call sites stay terse.
// Warnings and errors are always written; debug and info output appear
// when verbose mode is enabled via the --verbose flag or a debug level.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string

	// Pretty selects the human-readable console writer instead of JSON lines.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu      sync.RWMutex
	verbose bool
	pretty  bool
	level   = zerolog.WarnLevel
	output  io.Writer = os.Stderr
	zlog    = build()
)

// Configure replaces the logger configuration.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(cfg.Level)
	pretty = cfg.Pretty
	if cfg.Output != nil {
		output = cfg.Output
	}
	zlog = build()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	zlog = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zlog = build()
}

// L returns the underlying zerolog logger for structured fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := zlog
	return &l
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	L().Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	L().Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(err error, format string, args ...any) {
	L().Error().Err(err).Msgf(format, args...)
}

// Section marks the start of a pipeline stage in debug output.
func Section(name string) {
	L().Debug().Str("section", name).Msg("=== " + name + " ===")
}

// build must be called with mu held.
func build() zerolog.Logger {
	w := output
	if pretty {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	lvl := level
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "docrag").Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
