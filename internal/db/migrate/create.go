package migrate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeFormat is the version prefix of created migration files.
const TimeFormat = "20060102150405"

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Create writes an empty up/down migration pair named after message into dir
// and returns the two paths.
func Create(dir, message string, now time.Time) (string, string, error) {
	name := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(message), "_"), "_")
	if name == "" {
		return "", "", ErrEmptyName
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "failed to create migration directory")
	}

	base := filepath.Join(dir, now.UTC().Format(TimeFormat)+"_"+name)
	up := base + ".up.sql"
	down := base + ".down.sql"

	for _, path := range []string{up, down} {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return "", "", errors.Wrap(err, "failed to create migration file")
		}

		_, err = f.WriteString("-- " + message + "\n")
		if errC := f.Close(); err == nil {
			err = errC
		}

		if err != nil {
			return "", "", errors.Wrap(err, "failed to write migration file")
		}
	}

	return up, down, nil
}
