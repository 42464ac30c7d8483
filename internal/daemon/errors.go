package daemon

import "errors"

// ErrNilConfig is returned by New without settings.
var ErrNilConfig = errors.New("config is nil")
