// Package introtator provides an interface for logpilot that renames
// archived log files with an incrementing integer in the name.
// Rotated log files are named: service_1.log, service_2.log, and so on.
//
// The integer is a counter that lives in the Layout and starts over at 1
// every time the process starts. It is not derived from the files on disk,
// so an archive left over from a previous run with the same number is
// replaced by the rename.
//
// After every rotation all files in the log directory whose name contains
// the log file's name are listed, sorted by name, and the smallest names
// are deleted until FileCount remain. The integers are not zero-padded,
// so service_10.log sorts (and is deleted) before service_2.log.
package introtator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"golift.io/logpilot/filer"
)

// Layout defines how integer-stamped archive logs have their file names decided.
// This also sets how many files are kept; default (0) is unlimited.
type Layout struct {
	filer.Filer

	FileCount int // Maximum number of matching files left after a rotation.
	// Mockable interfaces. Can be used for custom processing. Setting these is very optional.
	PostRotate func(fileName, newFile string)
	Logf       func(msg string, v ...any) // Progress messages. Nil is quiet.
	sequence   int                        // Last integer handed out.
}

// Some constant this package uses.
const (
	LogExt = ".log" // suffixed to an integer.
	Joiner = "_"    // joins the name with the integer.
)

// Rotate renames the log file to the next integer name, then prunes old files.
// The returned name is empty if the rename failed. A failed rename does not
// stop pruning; the active file is never a pruning candidate.
func (l *Layout) Rotate(fileName string) (string, error) {
	newFile := l.nextArchive(fileName)

	err := l.Rename(fileName, newFile)
	if err != nil {
		err = fmt.Errorf("error rotating file: %w", err)
		newFile = ""
	} else {
		l.logf("archived %s into %s", fileName, newFile)
	}

	return newFile, errors.Join(err, l.deleteOldLogs(fileName))
}

// Dirs checks our config and returns the folder for the logpilot library to create.
// This satisfies the logpilot.Rotatorr interface.
func (l *Layout) Dirs(fileName string) ([]string, error) {
	if l.Filer == nil {
		l.Filer = filer.Default()
	}

	if l.FileCount < 0 {
		l.FileCount = 0
	}

	return []string{filepath.Dir(fileName)}, nil
}

// Post satisfies the Rotatorr interface.
func (l *Layout) Post(fileName, newFile string) {
	if l.PostRotate != nil {
		l.PostRotate(fileName, newFile)
	}
}

// Sequence returns the last integer used to name an archive.
// Zero means this Layout has not rotated anything yet.
func (l *Layout) Sequence() int {
	return l.sequence
}

// nextArchive increments the counter and returns the archive path that goes with it.
// The counter moves even if the rename later fails.
func (l *Layout) nextArchive(fileName string) string {
	l.sequence++

	return filepath.Join(filepath.Dir(fileName), getName(fileName)+Joiner+strconv.Itoa(l.sequence)+LogExt)
}

// deleteOldLogs deletes the lexicographically smallest files until FileCount remain.
// Every removal is attempted; failures are joined and returned.
func (l *Layout) deleteOldLogs(fileName string) error {
	found, err := filer.Find(l.Filer, filepath.Dir(fileName), getName(fileName))
	if err != nil {
		return err //nolint:wrapcheck
	}

	logFiles := make([]string, 0, len(found))

	for _, f := range found {
		if f != fileName {
			logFiles = append(logFiles, f)
		}
	}

	excess := len(logFiles) - l.FileCount
	l.logf("%d archived logs with max archive = %d, identified %d old logs to delete", len(logFiles), l.FileCount, excess)

	if l.FileCount < 1 || excess < 1 {
		return nil
	}

	var errs []error

	for _, f := range logFiles[:excess] {
		l.logf("deleting %s", f)

		if err := l.Remove(f); err != nil {
			errs = append(errs, fmt.Errorf("error removing file: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (l *Layout) logf(msg string, v ...any) {
	if l.Logf != nil {
		l.Logf(msg, v...)
	}
}

// getName returns a file's name without the path and log extension.
// Every archive and bundle of a stream contains this name.
func getName(fileName string) string {
	return strings.TrimSuffix(filepath.Base(fileName), LogExt)
}
