package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface.
// Key/value arguments are attached as zerolog fields.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger from an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) Logger {
	return &ZerologAdapter{logger: logger}
}

// NewZerologLogger builds a zerolog backed Logger writing JSON (or console
// output when format is "text") at the given level.
func NewZerologLogger(w io.Writer, level LogLevel, format string) Logger {
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	zl := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return NewZerologAdapter(zl)
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) { z.emit(z.logger.Debug(), msg, args) }

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) { z.emit(z.logger.Info(), msg, args) }

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) { z.emit(z.logger.Warn(), msg, args) }

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) { z.emit(z.logger.Error(), msg, args) }

func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil { // level disabled
		return
	}
	if len(args) > 0 {
		ev = ev.Fields(args)
	}
	ev.Msg(msg)
}
