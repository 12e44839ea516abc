// Package logging provides the Logger interface shared by every component
// in this module, wrapping log/slog in the printf-style shape used
// throughout the pipeline.
package logging

import (
	"fmt"
	"log/slog"
)

// Logger is implemented by every component that needs structured
// diagnostics without depending directly on log/slog.
type Logger interface {
	ErrorPrintf(format string, args ...any)
	WarnPrintf(format string, args ...any)
	InfoPrintf(format string, args ...any)
	DebugPrintf(format string, args ...any)
	Errorf(format string, args ...any) error
}

// Default returns a Logger backed by the slog default logger, prefixed
// with the given component name.
func Default(component string) Logger {
	return slogLogger{prefix: component + ": ", l: slog.Default()}
}

// FromSlog wraps an existing *slog.Logger, prefixed with the given
// component name.
func FromSlog(component string, l *slog.Logger) Logger {
	return slogLogger{prefix: component + ": ", l: l}
}

type slogLogger struct {
	prefix string
	l      *slog.Logger
}

func (s slogLogger) ErrorPrintf(format string, args ...any) {
	s.l.Error(s.prefix + fmt.Sprintf(format, args...))
}

func (s slogLogger) WarnPrintf(format string, args ...any) {
	s.l.Warn(s.prefix + fmt.Sprintf(format, args...))
}

func (s slogLogger) InfoPrintf(format string, args ...any) {
	s.l.Info(s.prefix + fmt.Sprintf(format, args...))
}

func (s slogLogger) DebugPrintf(format string, args ...any) {
	s.l.Debug(s.prefix + fmt.Sprintf(format, args...))
}

func (s slogLogger) Errorf(format string, args ...any) error {
	return fmt.Errorf(s.prefix+format, args...)
}
