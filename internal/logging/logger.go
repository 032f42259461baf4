// Package logging - logger.go
//
// This file implements centralized leveled logging for MacroFox.
//
// Logging System:
//   - Thread-safe file logging to Debug.log (in the data directory)
//   - Four log levels: DEBUG, INFO, WARN, ERROR
//   - Microsecond timestamps for tick timing analysis
//   - File is truncated (cleared) on each startup
//   - Optional mirroring to stderr for headless runs
//   - Global logger instance accessible via convenience functions
//
// Components that want an injectable logger accept the Logger interface.
// Default() adapts the global logger to that interface, Nop() discards.
//
// Logging Practices:
//   - DEBUG: per-tick detail (slot fired, sleep interval, tick duration)
//   - INFO: lifecycle (start, pause, stop, preset applied, settings saved)
//   - WARN: non-fatal problems (dispatcher failure, malformed preset file)
//   - ERROR: serious problems (file access errors, panics)
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the bracketed prefix name of the level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level, defaulting to INFO.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// FileLogger provides thread-safe logging to a file and optional extra writer.
//
// File Behavior:
// Debug.log is truncated (O_TRUNC) on each startup so the log file only
// contains the current session's messages.
type FileLogger struct {
	file   *os.File
	logger *log.Logger
	level  Level
	mu     sync.Mutex
}

var (
	globalMu     sync.RWMutex
	globalLogger *FileLogger
)

// Options configures Init.
type Options struct {
	Dir    string    // Directory for Debug.log; empty means current directory
	Level  Level     // Minimum level written
	Mirror io.Writer // Optional second destination (stderr for headless runs)
}

// Init initializes the global logger to write to Debug.log in opts.Dir.
// The log file is truncated on each startup.
func Init(opts Options) error {
	path := "Debug.log"
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(opts.Dir, path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	var out io.Writer = file
	if opts.Mirror != nil {
		out = io.MultiWriter(file, opts.Mirror)
	}

	l := &FileLogger{
		file:   file,
		logger: log.New(out, "", log.LstdFlags|log.Lmicroseconds),
		level:  opts.Level,
	}

	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()

	l.Info("Logger initialized (log file cleared)")
	return nil
}

// NewWriterLogger builds a FileLogger over an arbitrary writer without a file.
// Used by tests and by callers that only want stderr output.
func NewWriterLogger(w io.Writer, level Level) *FileLogger {
	return &FileLogger{
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

// Close closes the global log file
func Close() {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()

	if l != nil && l.file != nil {
		l.Info("Logger closing")
		l.file.Close()
	}
}

func (l *FileLogger) printf(level Level, format string, v ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("["+level.String()+"] "+format, v...)
}

// Debug logs debug level messages
func (l *FileLogger) Debug(format string, v ...any) { l.printf(LevelDebug, format, v...) }

// Info logs info level messages
func (l *FileLogger) Info(format string, v ...any) { l.printf(LevelInfo, format, v...) }

// Warn logs warning level messages
func (l *FileLogger) Warn(format string, v ...any) { l.printf(LevelWarn, format, v...) }

// Error logs error level messages
func (l *FileLogger) Error(format string, v ...any) { l.printf(LevelError, format, v...) }

func current() *FileLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Debug is a convenience function for debug logging
func Debug(format string, v ...any) {
	if l := current(); l != nil {
		l.Debug(format, v...)
	}
}

// Info is a convenience function for info logging
func Info(format string, v ...any) {
	if l := current(); l != nil {
		l.Info(format, v...)
	}
}

// Warn is a convenience function for warning logging
func Warn(format string, v ...any) {
	if l := current(); l != nil {
		l.Warn(format, v...)
	}
}

// Error is a convenience function for error logging
func Error(format string, v ...any) {
	if l := current(); l != nil {
		l.Error(format, v...)
	}
}

type globalAdapter struct{}

func (globalAdapter) Debug(format string, args ...any) { Debug(format, args...) }
func (globalAdapter) Info(format string, args ...any)  { Info(format, args...) }
func (globalAdapter) Warn(format string, args ...any)  { Warn(format, args...) }
func (globalAdapter) Error(format string, args ...any) { Error(format, args...) }

// Default returns a Logger that forwards to the global logger, whatever it is
// at call time.
func Default() Logger {
	return globalAdapter{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
