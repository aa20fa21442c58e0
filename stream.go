package logpilot

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golift.io/logpilot/bundler"
	"golift.io/logpilot/filer"
	"golift.io/logpilot/introtator"
)

// These are the default directory and log file POSIX modes.
const (
	FileMode os.FileMode = 0o600
	DirMode  os.FileMode = 0o750
)

// These defaults are used when the matching Config struct members are omitted.
const (
	DefaultName      = "app_log"
	DefaultMaxSize   = 512 * 1024
	DefaultFileCount = 3
)

// LogExt is appended to the stream name to make the active log file name.
const LogExt = ".log"

// Config is the data needed to create a new Stream. Every member is optional.
type Config struct {
	Rotatorr    Rotatorr    // Custom rotation logic. Default: introtator.Layout with FileCount.
	Filer       filer.Filer // Overridable file system procedures. Default: filer.Default().
	Dir         string      // Directory for the log, archives and bundle. Default: DirResolver().
	DirResolver DirResolver // Finds Dir when it's empty. Default: DefaultDir.
	Name        string      // Stream name; the log file is Name + ".log". Default: app_log.
	FileMode    os.FileMode // POSIX mode for new files.
	DirMode     os.FileMode // POSIX mode for new folders.
	FileSize    int64       // Rotate when the log file is larger than this many bytes.
	FileCount   int         // Maximum archives kept by the default Rotatorr.
	Verbose     bool        // Send progress messages to Printf, not just failures.
	// Printf is the diagnostic sink. Do not point it at this Stream. Default: log.Printf.
	Printf func(msg string, v ...any)
}

// Stream is what you get in return for providing a Config.
// You must obtain a Stream by calling one of the New() procedures.
type Stream struct {
	config      *Config  // incoming configuration.
	filePath    string   // the active log file.
	Interface   Rotatorr // copied from config for brevity.
	filer.Filer          // overridable file system procedures.
}

// New takes in your configuration and returns a Stream that writes into
// <Dir>/<Name>.log. The directories are created and, if the existing log
// file is already too large, it is rotated right away. An error is returned
// if the directory cannot be resolved or created.
func New(config *Config) (*Stream, error) {
	stream := &Stream{config: config}

	if err := stream.initialize(); err != nil {
		return nil, err
	}

	return stream, nil
}

// NewMust is New without the error. If the directory cannot be resolved
// os.TempDir() is used, and directory creation failures are ignored;
// every append reports its own failure.
func NewMust(config *Config) *Stream {
	stream := &Stream{config: config}
	_ = stream.initialize()

	return stream
}

// initialize runs all the startup routines.
func (s *Stream) initialize() error {
	dirErr := s.setConfigDefaults()
	s.filePath = filepath.Join(s.config.Dir, s.config.Name+LogExt)

	err := errors.Join(dirErr, s.makeDirs())
	s.verbosef("start logging into %s", s.filePath)
	s.RotateIfNeeded()

	return err
}

// setConfigDefaults does exactly what it says. Sets missing values.
// An unresolvable directory is replaced with os.TempDir() and returned as an error.
func (s *Stream) setConfigDefaults() error {
	var err error

	if s.config.Printf == nil {
		s.config.Printf = log.Printf
	}

	if s.config.Name == "" {
		s.config.Name = DefaultName
	}

	if s.config.FileSize <= 0 {
		s.config.FileSize = DefaultMaxSize
	}

	if s.config.FileCount <= 0 {
		s.config.FileCount = DefaultFileCount
	}

	if s.config.DirMode == 0 {
		s.config.DirMode = DirMode
	}

	if s.config.FileMode == 0 {
		s.config.FileMode = FileMode
	}

	if s.Filer = s.config.Filer; s.Filer == nil {
		s.Filer = filer.Default()
	}

	if s.config.Rotatorr == nil {
		layout := &introtator.Layout{FileCount: s.config.FileCount, Filer: s.Filer}
		if s.config.Verbose {
			layout.Logf = s.config.Printf
		}

		s.config.Rotatorr = layout
	}

	s.Interface = s.config.Rotatorr

	if s.config.Dir == "" {
		if s.config.DirResolver == nil {
			s.config.DirResolver = DefaultDir
		}

		if s.config.Dir, err = s.config.DirResolver(); err != nil || s.config.Dir == "" {
			err = fmt.Errorf("resolving log directory, using %s: %w", os.TempDir(), errors.Join(ErrNoDir, err))
			s.config.Dir = os.TempDir()
		}
	}

	return err
}

// makeDirs asks the Rotatorr which directories it needs and creates them.
func (s *Stream) makeDirs() error {
	dirs, err := s.Interface.Dirs(s.filePath)
	if err != nil {
		return fmt.Errorf("validating Rotatorr: %w", err)
	}

	for _, dir := range dirs {
		if err := s.MkdirAll(dir, s.config.DirMode); err != nil {
			return fmt.Errorf("making directories for logfiles: %w", err)
		}
	}

	return nil
}

// Log appends one line, "[<RFC3339 UTC time>] message", to the active log
// file and then checks whether the file needs rotating. The file is created
// if it's missing. Log never fails; errors are sent to Printf.
func (s *Stream) Log(message string) {
	line := "[" + time.Now().UTC().Format(time.RFC3339) + "] " + message + "\n"

	if err := s.write([]byte(line)); err != nil {
		s.printf("writing log entry: %v", err)
		return
	}

	s.RotateIfNeeded()
}

// Logf formats a message with fmt.Sprintf and passes it to Log.
func (s *Stream) Logf(format string, v ...any) {
	s.Log(fmt.Sprintf(format, v...))
}

// write opens the active log file for appending, writes and closes it.
func (s *Stream) write(b []byte) (err error) {
	file, err := s.OpenFile(s.filePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, s.config.FileMode)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing log file %s: %w", s.filePath, closeErr)
		}
	}()

	if _, err = file.Write(b); err != nil {
		return fmt.Errorf("error writing log msg: %w", err)
	}

	return nil
}

// RotateIfNeeded rotates the active log file if it is larger than FileSize.
// A missing or unreadable log file is not an error; nothing happens.
// Rotation failures are sent to Printf, and the next append tries again.
func (s *Stream) RotateIfNeeded() {
	info, err := s.Stat(s.filePath)
	if err != nil {
		return
	}

	if info.Size() <= s.config.FileSize {
		return
	}

	s.verbosef("current file size = %d > max file size = %d, rotating log file", info.Size(), s.config.FileSize)

	newFile, err := s.Interface.Rotate(s.filePath)
	if newFile != "" {
		defer s.Interface.Post(s.filePath, newFile)
	}

	if err != nil {
		s.printf("rotating %s: %v", s.filePath, err)
	}
}

// CurrentLogFile returns the path of the active log file.
func (s *Stream) CurrentLogFile() string {
	return s.filePath
}

// Bundle zips the active log file and every archive into <Dir>/<Name>.zip,
// replacing the previous bundle. See bundler.Bundler.Create for the meaning
// of an empty path with a nil error.
func (s *Stream) Bundle() (string, error) {
	b := &bundler.Bundler{
		Filer:    s.Filer,
		Dir:      s.config.Dir,
		Name:     s.config.Name,
		FileMode: s.config.FileMode,
		Verbose:  s.config.Verbose,
		Printf:   s.config.Printf,
	}

	path, err := b.Create()
	if err != nil {
		return "", fmt.Errorf("bundling %s: %w", s.config.Name, err)
	}

	return path, nil
}

func (s *Stream) printf(msg string, v ...any) {
	s.config.Printf(msg, v...)
}

func (s *Stream) verbosef(msg string, v ...any) {
	if s.config.Verbose {
		s.config.Printf(msg, v...)
	}
}
