package migrate

import "errors"

var (
	// ErrUnsupportedDriver is returned for databases golang-migrate is not wired for.
	ErrUnsupportedDriver = errors.New("migrations are not supported for this database")

	// ErrEmptyName is returned by Create for a message without letters or digits.
	ErrEmptyName = errors.New("migration name is empty")
)
