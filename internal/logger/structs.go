package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool
	UseConsoleWriter bool // human readable output instead of JSON
}

// LogFile implements a rotating file based logger.
type LogFile struct {
	Enabled    bool
	Filename   string // parent directory is created on Init
	MaxSize    int    // megabytes before rotation
	MaxBackups int
	MaxAge     int // days, 0 keeps rotated files regardless of age
	Compress   bool
}

// Log implements the logger config.
type Log struct {
	LogLevel     string // trace, debug, info, warning, error, critical.
	ReportCaller bool

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	// File is the rotating log file.
	File LogFile

	// Quiet maps a named logger to the minimum level it emits.
	Quiet map[string]string
}
