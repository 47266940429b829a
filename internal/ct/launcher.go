package ct

// Launcher is the external open/reveal capability. Failures are reported to
// the caller as notices and never affect catalog state.
type Launcher interface {
	// OpenFile opens the file at absPath with the host's default handler.
	OpenFile(absPath string) error

	// Reveal opens the containing folder of absPath in the host's file
	// browser (or the path itself if it is already a folder).
	Reveal(absPath string) error
}
