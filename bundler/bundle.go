// Package bundler packs every file that belongs to a log stream into one
// zip file that sits beside the active log: <dir>/<name>.zip.
//
// A stream's files are found the same way pruning finds them: every entry in
// the directory whose name contains the stream name. Each file is stored under
// its bare file name. A previous bundle is always deleted first, so calling
// Create twice leaves one bundle.
package bundler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"golift.io/logpilot/filer"
)

// BundleExt is appended to a stream name to make the bundle file name.
const BundleExt = ".zip"

// FileMode is the default POSIX mode for new bundles.
const FileMode os.FileMode = 0o600

// ErrCreate is returned when the bundle file cannot be created.
// This is the only failure Create returns; see Create.
var ErrCreate = errors.New("cannot create bundle")

// Bundler creates the bundle for one stream. It keeps no state between calls.
type Bundler struct {
	filer.Filer

	Dir      string      // Directory holding the stream's files. The bundle is written here too.
	Name     string      // Stream name. Every file containing it is bundled.
	Level    int         // Deflate level; 0 or out of range means flate.DefaultCompression.
	FileMode os.FileMode // POSIX mode for the bundle; 0 means FileMode.
	Verbose  bool        // Print a report after every successful bundle.
	// Printf receives failures and verbose reports. Default: log.Printf.
	Printf func(msg string, v ...any)
}

// Report contains a report of the bundle operation.
// Always check for Error to make sure the other data is valid.
type Report struct {
	Bundle  string   // path of the new bundle.
	Files   []string // bare file names added, in order.
	OldSize int64    // uncompressed bytes.
	NewSize int64    // bundle size.
	Elapsed time.Duration
	Error   error
}

// Path returns the path of the stream's bundle.
func (b *Bundler) Path() string {
	return filepath.Join(b.Dir, b.Name+BundleExt)
}

// Create writes a new bundle and returns its path. There are three outcomes:
//
//   - (path, nil): the bundle was written.
//   - ("", nil): something went wrong after the bundle file was created, or while
//     removing the old bundle or listing the directory. Details go to Printf and
//     no partial bundle is left behind.
//   - ("", err): the bundle file itself could not be created, such as when the
//     directory is read only. err wraps ErrCreate.
func (b *Bundler) Create() (string, error) {
	if b.Filer == nil {
		b.Filer = filer.Default()
	}

	report := &Report{Bundle: b.Path()}
	start := time.Now()

	if err := b.Remove(report.Bundle); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.printf("removing old bundle: %v", err)
		return "", nil
	}

	files, err := filer.Find(b.Filer, b.Dir, b.Name)
	if err != nil {
		b.printf("finding %s files: %v", b.Name, err)
		return "", nil
	}

	file, err := b.OpenFile(report.Bundle, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, b.mode())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCreate, report.Bundle, err)
	}

	report.Error = b.write(file, files, report)
	report.Elapsed = time.Since(start)

	if report.Error != nil {
		_ = b.Remove(report.Bundle)
		Log(report, b.Printf)

		return "", nil
	}

	if info, err := b.Stat(report.Bundle); err == nil {
		report.NewSize = info.Size()
	}

	if b.Verbose {
		Log(report, b.Printf)
	}

	return report.Bundle, nil
}

// Log sends a report to a custom procedure.
func Log(report *Report, printf func(msg string, v ...any)) {
	if printf == nil {
		printf = log.Printf
	}

	const kilobyte = 1024

	if report.Error != nil {
		printf("Bundle Error after %v: %v", report.Elapsed.Round(time.Millisecond), report.Error)
	} else {
		printf("Bundle Finished in %v: %d files/%dkB -> %s/%dkB", report.Elapsed.Round(time.Millisecond),
			len(report.Files), report.OldSize/kilobyte, report.Bundle, report.NewSize/kilobyte)
	}
}

// write does the "hard" work: create a zip writer on the open bundle file,
// copy every file into it, finish the archive and close the file.
func (b *Bundler) write(file *os.File, files []string, report *Report) (err error) {
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing bundle: %w", closeErr)
		}
	}()

	level := b.level()
	zipw := zip.NewWriter(file)
	zipw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, fileName := range files {
		size, err := b.add(zipw, fileName)
		if err != nil {
			return err
		}

		report.Files = append(report.Files, filepath.Base(fileName))
		report.OldSize += size
	}

	if err := zipw.Close(); err != nil {
		return fmt.Errorf("finishing bundle: %w", err)
	}

	return nil
}

// add copies one file into the zip under its bare name.
func (b *Bundler) add(zipw *zip.Writer, fileName string) (int64, error) {
	src, err := b.OpenFile(fileName, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("stating source file: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("making zip header for %s: %w", fileName, err)
	}

	header.Name = filepath.Base(fileName)
	header.Method = zip.Deflate

	dst, err := zipw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", header.Name, err)
	}

	size, err := io.Copy(dst, src)
	if err != nil {
		return size, fmt.Errorf("%s -> bundle: %w", fileName, err)
	}

	return size, nil
}

func (b *Bundler) level() int {
	if b.Level == 0 || b.Level < flate.HuffmanOnly || b.Level > flate.BestCompression {
		return flate.DefaultCompression
	}

	return b.Level
}

func (b *Bundler) mode() os.FileMode {
	if b.FileMode == 0 {
		return FileMode
	}

	return b.FileMode
}

func (b *Bundler) printf(msg string, v ...any) {
	if b.Printf == nil {
		log.Printf(msg, v...)
		return
	}

	b.Printf(msg, v...)
}
