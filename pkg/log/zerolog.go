package log

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/modeleval/pkg/errors"
)

// NewConsoleLogger returns a zerolog logger with human-readable console output.
// Intended for examples and interactive use; services should prefer SetupLogger.
func NewConsoleLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// EnableZerologWarnings routes library warnings (UndefinedMetricWarning,
// ConvergenceWarning, ...) to the given zerolog logger. Warning types that
// implement zerolog.LogObjectMarshaler are logged as structured objects.
func EnableZerologWarnings(logger zerolog.Logger) {
	errors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if marshaler, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event.Object("warning", marshaler).Msg(warning.Error())
			return
		}
		event.Err(warning).Msg("modeleval warning")
	})
}
