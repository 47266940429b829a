package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ct-go/internal/ct"
	"ct-go/internal/fs"
)

// writeTree creates the given files (with trivial content) under root.
func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("creating directory: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
	}
}

func TestOSFilesystem_ResolveDir(t *testing.T) {
	fsys := fs.NewOSFilesystem()

	t.Run("resolves an existing directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := fsys.ResolveDir(dir)
		if err != nil {
			t.Fatalf("ResolveDir() error = %v", err)
		}
		if got != dir {
			t.Errorf("ResolveDir() = %q, want %q", got, dir)
		}
	})

	t.Run("rejects a missing path", func(t *testing.T) {
		_, err := fsys.ResolveDir(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ct.ErrNotADirectory) {
			t.Errorf("ResolveDir() error = %v, want ErrNotADirectory", err)
		}
	})

	t.Run("rejects a file", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, []string{"file.txt"})
		_, err := fsys.ResolveDir(filepath.Join(dir, "file.txt"))
		if !errors.Is(err, ct.ErrNotADirectory) {
			t.Errorf("ResolveDir() error = %v, want ErrNotADirectory", err)
		}
	})
}

func TestOSFilesystem_ListDirs(t *testing.T) {
	fsys := fs.NewOSFilesystem()
	dir := t.TempDir()
	writeTree(t, dir, []string{"b/file.mp4", "a/file.mp4", "loose.txt"})

	got, err := fsys.ListDirs(dir)
	if err != nil {
		t.Fatalf("ListDirs() error = %v", err)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListDirs() = %v, want %v", got, want)
	}
}

func TestOSFilesystem_WalkFiles(t *testing.T) {
	fsys := fs.NewOSFilesystem()

	t.Run("visits in natural order", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, []string{
			"Lecture 10.mp4",
			"Lecture 2.mp4",
			"Lecture 1.mp4",
		})

		var visited []string
		err := fsys.WalkFiles(dir, nil, func(v ct.FileVisit) error {
			visited = append(visited, v.Name)
			return nil
		})
		if err != nil {
			t.Fatalf("WalkFiles() error = %v", err)
		}

		want := []string{"Lecture 1.mp4", "Lecture 2.mp4", "Lecture 10.mp4"}
		if !reflect.DeepEqual(visited, want) {
			t.Errorf("WalkFiles() order = %v, want %v", visited, want)
		}
	})

	t.Run("pruned directories are not descended", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, []string{
			"keep/file.mp4",
			"skip/file.mp4",
			"skip/nested/deep.mp4",
		})

		var visited []string
		prune := func(name string) bool { return name == "skip" }
		err := fsys.WalkFiles(dir, prune, func(v ct.FileVisit) error {
			visited = append(visited, v.Name)
			return nil
		})
		if err != nil {
			t.Fatalf("WalkFiles() error = %v", err)
		}

		if !reflect.DeepEqual(visited, []string{"file.mp4"}) {
			t.Errorf("WalkFiles() visited = %v, want only keep/file.mp4", visited)
		}
	})

	t.Run("reports size and mtime", func(t *testing.T) {
		dir := t.TempDir()
		full := filepath.Join(dir, "file.bin")
		if err := os.WriteFile(full, []byte("12345"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}

		var got ct.FileVisit
		err := fsys.WalkFiles(dir, nil, func(v ct.FileVisit) error {
			got = v
			return nil
		})
		if err != nil {
			t.Fatalf("WalkFiles() error = %v", err)
		}
		if got.SizeBytes != 5 {
			t.Errorf("SizeBytes = %d, want 5", got.SizeBytes)
		}
		if got.Mtime == 0 {
			t.Error("Mtime = 0, want nonzero")
		}
		if got.AbsPath != full {
			t.Errorf("AbsPath = %q, want %q", got.AbsPath, full)
		}
	})

	t.Run("visit error stops the walk", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, []string{"a.mp4", "b.mp4"})

		wantErr := errors.New("stop")
		count := 0
		err := fsys.WalkFiles(dir, nil, func(ct.FileVisit) error {
			count++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("WalkFiles() error = %v, want %v", err, wantErr)
		}
		if count != 1 {
			t.Errorf("visit count = %d, want 1", count)
		}
	})
}
