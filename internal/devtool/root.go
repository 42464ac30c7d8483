package devtool

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNoModuleRoot is returned if no go.mod is found above the start directory.
var ErrNoModuleRoot = errors.New("go.mod not found")

// FindRoot returns the closest directory at or above start holding a go.mod.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve start directory")
	}

	for {
		if info, errS := os.Stat(filepath.Join(dir, "go.mod")); errS == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(ErrNoModuleRoot, "above %s", start)
		}

		dir = parent
	}
}
