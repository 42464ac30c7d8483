// Package stdlogger adapts zerolog to printf style logger interfaces,
// e.g. the logger of golang-migrate.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/skeletonhq/backend/internal/logger"
)

// Logger is a printf style logger writing to a named zerolog logger.
type Logger struct {
	l zerolog.Logger
}

// New returns a Logger writing to the logger.MigrateLogger logger.
func New() *Logger {
	return NewWithLogger(logger.Named(logger.MigrateLogger))
}

// NewWithLogger returns a Logger writing to l.
func NewWithLogger(l zerolog.Logger) *Logger {
	return &Logger{l: l}
}

// Printf logs at info level. Trailing newlines are trimmed.
func (s *Logger) Printf(format string, v ...any) {
	s.Infof(format, v...)
}

// Verbose reports whether debug output is enabled.
func (s *Logger) Verbose() bool {
	return s.l.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// Debugf logs at debug level.
func (s *Logger) Debugf(format string, v ...any) {
	s.l.Debug().Msgf(strings.TrimRight(format, "\n"), v...)
}

// Infof logs at info level.
func (s *Logger) Infof(format string, v ...any) {
	s.l.Info().Msgf(strings.TrimRight(format, "\n"), v...)
}

// Warningf logs at warn level.
func (s *Logger) Warningf(format string, v ...any) {
	s.l.Warn().Msgf(strings.TrimRight(format, "\n"), v...)
}

// Errorf logs at error level.
func (s *Logger) Errorf(format string, v ...any) {
	s.l.Error().Msgf(strings.TrimRight(format, "\n"), v...)
}
