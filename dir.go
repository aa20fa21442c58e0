package logpilot

import (
	"fmt"
	"os"
)

// DirResolver returns the directory a Stream writes into when Config.Dir is empty.
type DirResolver func() (string, error)

// DefaultDir is the default DirResolver. It returns the user's application
// data directory: ~/Library/Application Support on macOS, $XDG_CONFIG_HOME
// or ~/.config on Linux and %AppData% on Windows.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding application data directory: %w", err)
	}

	return dir, nil
}

// StaticDir returns a DirResolver that always returns dir. Useful in tests.
func StaticDir(dir string) DirResolver {
	return func() (string, error) { return dir, nil }
}
