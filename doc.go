// Package logpilot is a local log file writer with size-based rotation,
// bounded archive retention and on-demand bundling of every related file
// into one zip archive.
//
// A Stream appends timestamped lines to <dir>/<name>.log. After every append
// the file size is checked; once it is larger than FileSize the file is
// renamed to <name>_<n>.log and the oldest files are deleted until FileCount
// remain. Appending never returns an error: logging must not crash the app,
// so failures are reported to a printf-style diagnostic function and dropped.
//
// Stream.Bundle packs the active file and all archives into <dir>/<name>.zip,
// replacing any previous bundle. Unlike appends, bundling can fail loudly.
//
// Streams are synchronous and hold no locks. Serialize access yourself if
// more than one go routine writes to the same Stream.
//
//	https://pkg.go.dev/golift.io/logpilot/introtator
//	https://pkg.go.dev/golift.io/logpilot/bundler
package logpilot
