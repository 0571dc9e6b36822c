// Package filex locates and creates the directories the CLI keeps state in.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates base/name with owner-only permissions if needed and
// returns its path.
func EnsureDir(base, name string) (string, error) {
	dir := filepath.Join(base, name)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// StateDir returns the per-user directory for app, under the user config
// directory, or under the working directory when that is unknown.
func StateDir(app string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		if base, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
	}
	return EnsureDir(base, app)
}
