// Package log provides structured logging for crossval operations,
// backed by zerolog. Error and warning types from pkg/errors implement
// zerolog.LogObjectMarshaler, so logging them preserves their fields.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	crosserrors "github.com/YuminosukeSato/crossval/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// Setup configures the package logger with the given output and level
// ("debug", "info", "warn", "error"; anything else keeps "warn"), and
// installs it as the sink for pkg/errors warnings.
func Setup(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()

	logger = zerolog.New(w).With().Timestamp().Logger().Level(toLevel(level))
	crosserrors.SetZerologWarnFunc(func(warning error) {
		ev := Logger().Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj).Msg("warning")
			return
		}
		ev.Err(warning).Msg("warning")
	})
}

// Logger returns the package logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// With returns a child logger pre-populated with a component field.
func With(component string) zerolog.Logger {
	return Logger().With().Str(ComponentKey, component).Logger()
}

func toLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
