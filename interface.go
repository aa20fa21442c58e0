package logpilot

//go:generate mockgen -destination=mocks/rotatorr.go -package=mocks golift.io/logpilot Rotatorr

// Rotatorr allows passing in your own logic for file rotation.
// The introtator package provides the default: integer-suffixed archives
// with a bounded count. Use it directly, or wrap it with your own methods.
type Rotatorr interface {
	// Rotate is called any time the active file grows past its size limit.
	// It must move the active file out of the way and prune old archives.
	// newFile is empty if the active file could not be moved.
	Rotate(fileName string) (newFile string, err error)
	// Post is called after every rotation attempt that produced a new file.
	// This is blocking; appends wait for it to return.
	Post(fileName, newFile string)

	// Dirs is called once on startup.
	// This should do any validation and return a list of directories to create.
	Dirs(fileName string) (dirPaths []string, err error)
}
