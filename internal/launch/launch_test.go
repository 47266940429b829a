package launch_test

import (
	"path/filepath"
	"testing"

	"ct-go/internal/launch"
)

func TestOSLauncher_OpenFile(t *testing.T) {
	t.Run("rejects a missing file", func(t *testing.T) {
		l := launch.NewOSLauncher()
		if err := l.OpenFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
			t.Error("OpenFile() expected error for missing file")
		}
	})
}

func TestOSLauncher_Reveal(t *testing.T) {
	t.Run("rejects a missing path", func(t *testing.T) {
		l := launch.NewOSLauncher()
		if err := l.Reveal(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("Reveal() expected error for missing path")
		}
	})
}
