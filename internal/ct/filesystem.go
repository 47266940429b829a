package ct

// FileVisit describes one regular file encountered during a walk. Size and
// Mtime are already coerced to 0 when the per-entry stat failed; a stat
// failure never drops the file from the walk.
type FileVisit struct {
	AbsPath   string
	Name      string
	SizeBytes int64
	Mtime     int64 // Unix seconds
}

// Filesystem provides the directory enumeration the scanner depends on.
// Implementations must visit siblings in natural order and consult the prune
// predicate before descending into a subdirectory.
type Filesystem interface {
	// ResolveDir validates a raw path and returns its absolute, normalized
	// form. Returns ErrNotADirectory when the path does not resolve to an
	// existing directory.
	ResolveDir(rawPath string) (string, error)

	// ListDirs returns the names of the immediate subdirectories of path.
	ListDirs(path string) ([]string, error)

	// WalkFiles recursively visits every regular file under root.
	// Subdirectories for which prune returns true are skipped before
	// descending. An unreadable directory aborts the walk with an error.
	WalkFiles(root string, prune func(dirName string) bool, visit func(FileVisit) error) error
}
