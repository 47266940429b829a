package ct

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes callers branch on.
var (
	// ErrNotADirectory means a course path did not resolve to an existing
	// directory. Fatal to a scan; the course is not created or updated.
	ErrNotADirectory = errors.New("path is not a directory")

	// ErrCourseNotFound means an operation referenced a deleted or unknown
	// course. The caller should fall back to the course-list view.
	ErrCourseNotFound = errors.New("course not found")

	// ErrItemNotFound means an operation referenced a stale item id.
	ErrItemNotFound = errors.New("item not found")

	// ErrNoHistory means nothing has ever been opened.
	ErrNoHistory = errors.New("no last opened item")
)

// DirectoryReadError wraps a failure to enumerate a course tree. A scan that
// returns one has made no catalog changes.
type DirectoryReadError struct {
	Path string
	Err  error
}

func (e *DirectoryReadError) Error() string {
	return fmt.Sprintf("reading directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryReadError) Unwrap() error { return e.Err }

// LaunchError reports that the external open/reveal capability failed.
// It is a user-visible notice and never affects catalog state.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
