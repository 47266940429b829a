// Package launch opens files and folders with the host desktop's default
// applications.
package launch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"ct-go/internal/ct"
)

// OSLauncher hands paths to the platform opener (xdg-open, open, or
// explorer).
type OSLauncher struct{}

func NewOSLauncher() *OSLauncher {
	return &OSLauncher{}
}

// OpenFile launches the default application for the file at absPath. The
// file must exist; a dangling catalog entry is reported instead of being
// passed to the opener.
func (l *OSLauncher) OpenFile(absPath string) error {
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return openPath(absPath)
}

// Reveal opens the file manager at the directory containing absPath. If
// absPath is itself a directory it is opened directly.
func (l *OSLauncher) Reveal(absPath string) error {
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("path not accessible: %w", err)
	}
	target := absPath
	if !info.IsDir() {
		target = filepath.Dir(absPath)
	}
	return openPath(target)
}

func openPath(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching opener: %w", err)
	}
	// The opener is fire and forget; reap it in the background so it
	// does not linger as a zombie.
	go cmd.Wait()
	return nil
}

// Compile-time check that OSLauncher implements ct.Launcher
var _ ct.Launcher = (*OSLauncher)(nil)
