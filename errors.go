package logpilot

import "errors"

// Custom errors returned by this package.
var (
	// ErrNoDir means the DirResolver failed or returned an empty path.
	ErrNoDir = errors.New("no log directory")
)
