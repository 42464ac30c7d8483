// Package gorm implements a gorm logger writing to zerolog.
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skeletonhq/backend/internal/logger"
)

// DefaultSlowThreshold is the query duration reported as slow.
const DefaultSlowThreshold = 200 * time.Millisecond

// Config of the gorm logger.
type Config struct {
	// SlowThreshold queries taking longer are logged at warn level.
	SlowThreshold time.Duration

	// IgnoreRecordNotFoundError do not log gorm.ErrRecordNotFound.
	IgnoreRecordNotFoundError bool
}

// Logger implements gormlogger.Interface.
// Statements are logged at debug, slow statements at warn and failed ones at error level.
type Logger struct {
	l     zerolog.Logger
	cfg   Config
	level gormlogger.LogLevel
}

var _ gormlogger.Interface = (*Logger)(nil)

// New returns a gorm logger writing to the logger.ORMLogger logger.
func New(cfg Config) *Logger {
	return NewWithLogger(logger.Named(logger.ORMLogger), cfg)
}

// NewWithLogger returns a gorm logger writing to l.
func NewWithLogger(l zerolog.Logger, cfg Config) *Logger {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowThreshold
	}

	return &Logger{l: l, cfg: cfg, level: gormlogger.Info}
}

// LogMode returns a copy of the logger limited to level.
func (g *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level

	return &c
}

// Info logs at info level.
func (g *Logger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		g.l.Info().Ctx(ctx).Msgf(msg, data...)
	}
}

// Warn logs at warn level.
func (g *Logger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		g.l.Warn().Ctx(ctx).Msgf(msg, data...)
	}
}

// Error logs at error level.
func (g *Logger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		g.l.Error().Ctx(ctx).Msgf(msg, data...)
	}
}

// Trace logs a finished sql statement.
func (g *Logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var event *zerolog.Event

	switch {
	case err != nil && g.level >= gormlogger.Error &&
		!(g.cfg.IgnoreRecordNotFoundError && errors.Is(err, gorm.ErrRecordNotFound)):
		event = g.l.Error().Err(err)
	case elapsed > g.cfg.SlowThreshold && g.level >= gormlogger.Warn:
		event = g.l.Warn().Dur("threshold", g.cfg.SlowThreshold)
	case g.level >= gormlogger.Info:
		event = g.l.Debug()
	default:
		return
	}

	sql, rows := fc()

	event.Ctx(ctx).
		Dur("elapsed", elapsed).
		Int64("rows", rows).
		Str("sql", sql).
		Msg("sql statement")
}
