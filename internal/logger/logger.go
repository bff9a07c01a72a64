// Package logger provides levelled logging for sercha-ingest.
// Messages at or above the configured level are written to stderr as
// "[LEVEL] message" lines. The --verbose flag lowers the level to debug so
// users can follow each upload through the pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

// Logging levels, least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level.
// "warning" is accepted as an alias for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.RWMutex
	level            = LevelInfo
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose enables debug logging, or restores the info level.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelInfo)
}

// IsVerbose returns true if debug messages are written.
func IsVerbose() bool {
	return GetLevel() <= LevelDebug
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l >= level {
		fmt.Fprintf(output, "["+tag+"] "+format+"\n", args...)
	}
}

// Debug prints a message if debug logging is enabled.
func Debug(format string, args ...any) {
	logf(LevelDebug, "DEBUG", format, args...)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	logf(LevelError, "ERROR", format, args...)
}

// Section prints a section header if debug logging is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
