// Package errortracking reports unexpected errors to sentry when SENTRY_DSN is set.
package errortracking

import (
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var enabled atomic.Bool //nolint:gochecknoglobals

// Init configures the global sentry hub. An empty dsn disables reporting
// and returns false.
func Init(dsn, release, environment string, debug bool) (bool, error) {
	if dsn == "" {
		enabled.Store(false)

		return false, nil
	}

	return initWithOptions(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		Environment:      environment,
		Debug:            debug,
		AttachStacktrace: true,
	})
}

func initWithOptions(opts sentry.ClientOptions) (bool, error) {
	if err := sentry.Init(opts); err != nil {
		enabled.Store(false)

		return false, errors.Wrap(err, "failed to init sentry")
	}

	enabled.Store(true)
	log.Info().Str("environment", opts.Environment).Msg("error tracking enabled")

	return true, nil
}

// Enabled reports whether errors are sent.
func Enabled() bool {
	return enabled.Load()
}

// Capture sends err, a no-op while disabled.
func Capture(err error) {
	if err == nil || !enabled.Load() {
		return
	}

	sentry.CaptureException(err)
}

// Flush waits up to timeout for buffered events.
func Flush(timeout time.Duration) {
	if !enabled.Load() {
		return
	}

	if !sentry.Flush(timeout) {
		log.Warn().Dur("timeout", timeout).Msg("error tracking flush timed out")
	}
}
