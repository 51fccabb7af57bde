package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger keeps the printf-style call sites used across services while
// emitting structured zerolog records underneath.
type Logger struct {
	zl zerolog.Logger
}

// New returns a development logger writing human-readable lines to stdout.
func New() *Logger {
	return NewWithOptions("info", false, os.Stdout)
}

// NewWithOptions builds a logger at the given level. JSON output is used
// when json is true, console output otherwise.
func NewWithOptions(level string, json bool, out io.Writer) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := out
	if !json {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return &Logger{
		zl: zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "fanvault").Logger(),
	}
}

// With returns a child logger tagged with a component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Zerolog exposes the underlying logger for structured fields.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}
