// Package logging provides component-scoped loggers for snapsort.
//
// Loggers write to stderr by default and optionally to a log file under
// $XDG_STATE_HOME/snapsort/. Before Init is called, loggers are silent so
// that library code can log unconditionally.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("archive")
//	logger.Info("copy started", "source", src)
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Config configures the logging system.
type Config struct {
	// Level is the minimum level emitted (debug, info, warn, error).
	Level string

	// Path is an optional log file. Empty disables file output.
	Path string

	// Console controls stderr output. Disabled for quiet mode.
	Console bool
}

// Logger writes to the console and, when configured, a log file.
type Logger struct {
	console *log.Logger
	file    *log.Logger
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.each(func(lg *log.Logger) { lg.Debug(msg, args...) }) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.each(func(lg *log.Logger) { lg.Info(msg, args...) }) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.each(func(lg *log.Logger) { lg.Warn(msg, args...) }) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.each(func(lg *log.Logger) { lg.Error(msg, args...) }) }

func (l *Logger) each(fn func(*log.Logger)) {
	if l.console != nil {
		fn(l.console)
	}
	if l.file != nil {
		fn(l.file)
	}
}

// With returns a logger with additional key/value context.
func (l *Logger) With(args ...interface{}) *Logger {
	out := &Logger{}
	if l.console != nil {
		out.console = l.console.With(args...)
	}
	if l.file != nil {
		out.file = l.file.With(args...)
	}
	return out
}

type state struct {
	mu          sync.Mutex
	initialized bool
	level       log.Level
	console     bool
	fileHandle  *os.File
	loggers     map[string]*Logger
}

var globalState = &state{loggers: make(map[string]*Logger)}

// Init initializes the logging system. Call Init before Get; loggers handed
// out earlier stay silent.
func Init(cfg Config) error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	globalState.level = level
	globalState.console = cfg.Console

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		globalState.fileHandle = f
	}

	globalState.initialized = true
	globalState.loggers = make(map[string]*Logger)
	return nil
}

// Get returns the logger for the given component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := createLogger(component)
	globalState.loggers[component] = logger
	return logger
}

// createLogger builds a logger for a component. Must hold globalState.mu.
func createLogger(component string) *Logger {
	if !globalState.initialized {
		return &Logger{console: log.NewWithOptions(io.Discard, log.Options{Prefix: component})}
	}

	logger := &Logger{}
	if globalState.console {
		logger.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           globalState.level,
			ReportTimestamp: false,
			Prefix:          component,
		})
	}
	if globalState.fileHandle != nil {
		logger.file = log.NewWithOptions(globalState.fileHandle, log.Options{
			Level:           globalState.level,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		})
	}
	return logger
}

// Close flushes and closes the log file, if any.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.fileHandle != nil {
		if err := globalState.fileHandle.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
		globalState.fileHandle = nil
	}

	globalState.initialized = false
	globalState.loggers = make(map[string]*Logger)
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/snapsort/snapsort.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "snapsort", "snapsort.log")
}
