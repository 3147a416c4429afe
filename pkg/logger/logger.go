// Package logger is the zerolog-backed structured logger shared by the
// engine, the registry and the built-in advices.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// HumanReadable switches from JSON lines to zerolog's console format.
	HumanReadable bool
	// Writer receives the entries. Defaults to os.Stdout.
	Writer io.Writer
}

// Logger is a thin, nil-safe handle over a zerolog.Logger. Write failures
// are swallowed by zerolog, so logging never fails the caller.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	zl := zerolog.New(output(opts)).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

func output(opts Options) io.Writer {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if !opts.HumanReadable {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithFields returns a child logger that adds fields to every entry.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Fields(fields).Logger()}
}

// WithField is WithFields for a single key.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string) {
	if l != nil {
		l.zl.Debug().Msg(msg)
	}
}

func (l *Logger) Info(msg string) {
	if l != nil {
		l.zl.Info().Msg(msg)
	}
}

func (l *Logger) Warn(msg string) {
	if l != nil {
		l.zl.Warn().Msg(msg)
	}
}

// Error writes msg at error level with err under the "error" key.
func (l *Logger) Error(err error, msg string) {
	if l == nil {
		return
	}
	l.zl.Error().Err(err).Msg(msg)
}

// Zerolog returns the underlying logger for typed field builders.
func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.zl
}
