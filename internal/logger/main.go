// Package logger configures the process wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// NameFieldName is the field holding the logger name of an entry.
	NameFieldName = "logger"

	// AccessLogger is the name of the http access logger.
	AccessLogger = "http.access"

	// ORMLogger is the name of the gorm sql logger.
	ORMLogger = "gorm"

	// MigrateLogger is the name of the schema migration logger.
	MigrateLogger = "migrate"

	logDirPerm = 0o750
)

var (
	mu         sync.RWMutex             //nolint:gochecknoglobals
	base       = log.Logger             //nolint:gochecknoglobals
	quiet      map[string]zerolog.Level //nolint:gochecknoglobals
	fileWriter *lumberjack.Logger       //nolint:gochecknoglobals
)

// DefaultQuiet returns the minimum levels of the noisy loggers.
// Access and sql statement logs are only written from warn level up.
func DefaultQuiet() map[string]string {
	return map[string]string{
		AccessLogger: zerolog.WarnLevel.String(),
		ORMLogger:    zerolog.WarnLevel.String(),
	}
}

// LevelWriter implements a struct to split logs by info and error and up level.
// See func WriteLevel about the separation.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel splits logging by level and links the pointer to the target output depending on the logger defined.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	var w io.Writer

	// disabled logging
	if l == zerolog.Disabled {
		return 0, nil
	}

	// decide where to write this log content
	switch {
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel: // error and fatal panic go to error
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter // debug and info go to info
	}

	// return selected logger writer.
	return w.Write(p) //nolint:wrapcheck
}

// ParseLevel parses a level name case-insensitively.
// Besides the zerolog names it accepts "warning" and "critical". Empty means info.
func ParseLevel(name string) (zerolog.Level, error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	switch lower {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "critical":
		return zerolog.FatalLevel, nil
	}

	level, err := zerolog.ParseLevel(lower)
	if err != nil {
		return zerolog.NoLevel, errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", name))
	}

	return level, nil
}

// Init the zerolog logger.
// Depending on the config it enables the console sink, the rotating file sink, both or none.
// Calling Init again replaces the sinks.
func Init(cfg Log) error { //nolint:funlen
	var (
		logLevel, err = ParseLevel(cfg.LogLevel)
		writers       []io.Writer
		stack         bool
		quietLevels   = make(map[string]zerolog.Level, len(cfg.Quiet))
	)

	if err != nil {
		return err
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	for name, levelName := range cfg.Quiet {
		if quietLevels[name], err = ParseLevel(levelName); err != nil {
			return errors.Wrapf(err, "quiet level of logger %s", name)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	// use zerolog stack marshal func if trace level is set
	if logLevel == zerolog.TraceLevel {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
		stack = true
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = ErrorHandler //nolint:reassign

	// init prometheus
	ph := NewPrometheusHook(cfg.ServiceName)

	// add the enabled only loggers
	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		fw, errFile := newRollingFile(cfg.File)
		if errFile != nil {
			return errFile
		}

		if fileWriter != nil {
			_ = fileWriter.Close()
		}

		fileWriter = fw
		writers = append(writers, fw)
	}

	mw := zerolog.MultiLevelWriter(writers...)

	// decide what zero log should show
	switch {
	case cfg.ReportCaller && stack:
		base = zerolog.New(mw).Hook(ph).With().Timestamp().Stack().Logger()
	case cfg.ReportCaller:
		base = zerolog.New(mw).Hook(ph).With().Timestamp().Caller().Logger()
	default:
		base = zerolog.New(mw).Hook(ph).With().Timestamp().Logger()
	}

	quiet = quietLevels
	log.Logger = base.With().Str(NameFieldName, cfg.ServiceName).Logger()

	return nil
}

// Named returns a child of the global logger tagged with name.
// Loggers listed in Log.Quiet only emit from their configured level up.
func Named(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	l := base.With().Str(NameFieldName, name).Logger()

	if level, ok := quiet[name]; ok {
		l = l.Level(level)
	}

	return l
}

// Close closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if fileWriter == nil {
		return nil
	}

	err := fileWriter.Close()
	fileWriter = nil

	return err //nolint:wrapcheck
}

// newRollingFile creates the log directory and a lumberjack rotating writer.
func newRollingFile(cfg LogFile) (*lumberjack.Logger, error) {
	if cfg.Filename == "" {
		return nil, ErrFilenameIsEmpty
	}

	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, errors.Wrapf(err, "can't create log directory %s", dir)
	}

	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  false,
		Compress:   cfg.Compress,
	}, nil
}

// NewConsoleWriter creates a zerolog ConsoleWriter.
func NewConsoleWriter(cfg Log) io.Writer {
	var lw LevelWriter

	lw.ErrorWriter = os.Stderr
	lw.InfoWriter = os.Stdout
	lw.TraceWriter = os.Stderr
	lw.WarnWriter = os.Stderr

	if cfg.Console.UseConsoleWriter {
		lw.ErrorWriter = newConsoleWriter(os.Stderr)
		lw.InfoWriter = newConsoleWriter(os.Stdout)
		lw.TraceWriter = newConsoleWriter(os.Stderr)
		lw.WarnWriter = newConsoleWriter(os.Stderr)
	}

	return &lw
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    false,
		TimeFormat: zerolog.TimeFieldFormat,
	}
}
