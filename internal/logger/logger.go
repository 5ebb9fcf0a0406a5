// Package logger builds the process logger. It is constructed once at
// startup and handed to components by reference; nothing in the module
// reaches for a hidden singleton.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with file lifecycle handling.
type Logger struct {
	logger zerolog.Logger
	file   *os.File
}

// Config holds logger configuration.
type Config struct {
	Level   string // debug, info, warn, error
	File    string // log file path, empty disables file output
	Console bool   // enable console output
	Pretty  bool   // human-readable console format
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Console: true,
		Pretty:  true,
	}
}

// New creates a logger. The result is also installed as zerolog's
// package-level logger so library defaults pick it up.
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer

	if cfg.Console {
		// Logs go to stderr so command output on stdout stays clean.
		var consoleWriter io.Writer = os.Stderr
		if cfg.Pretty {
			consoleWriter = zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.RFC3339,
			}
		}
		writers = append(writers, consoleWriter)
	}

	var file *os.File
	if cfg.File != "" {
		dir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}

		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = logger

	return &Logger{
		logger: logger,
		file:   file,
	}, nil
}

// Close closes the logger and any open files.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Zerolog returns the underlying zerolog.Logger for injection into
// components.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

// Debug starts a debug-level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info starts an info-level event.
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn starts a warn-level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error starts an error-level event.
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}
