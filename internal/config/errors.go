package config

import (
	"errors"
)

var (
	// ErrInvalidList error if a list setting is neither a string nor a sequence of strings.
	ErrInvalidList = errors.New("list setting must be a comma separated string or a sequence of strings")

	// ErrInvalidSettings error if the loaded settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
