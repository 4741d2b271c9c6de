// Package sqlitepath resolves where the SQLite report database lives.
package sqlitepath

import (
	"errors"
	"path/filepath"

	"github.com/papercomputeco/reportkit/pkg/dotdir"
)

// FileName is the database file created inside the .reportkit/ directory.
const FileName = "reportkit.sqlite"

// ErrNoDotdir is returned when neither an explicit path nor a .reportkit/
// directory is available.
var ErrNoDotdir = errors.New("could not find a .reportkit directory for the SQLite database; run \"reportkit init\" or pass --sqlite")

// ResolveSQLitePath returns override when set, otherwise the database file
// inside the resolved .reportkit/ directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", err
	}
	if target == "" {
		return "", ErrNoDotdir
	}

	return filepath.Join(target, FileName), nil
}
