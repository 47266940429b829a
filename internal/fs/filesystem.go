package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"ct-go/internal/ct"
	"ct-go/internal/natsort"
)

// OSFilesystem is the real implementation of ct.Filesystem. It performs
// actual filesystem operations using the os package.
type OSFilesystem struct{}

// NewOSFilesystem creates a filesystem that operates on the real host.
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{}
}

// ResolveDir validates a raw path and returns its absolute form.
func (f *OSFilesystem) ResolveDir(rawPath string) (string, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ct.ErrNotADirectory, absPath)
	}
	return filepath.Clean(absPath), nil
}

// ListDirs returns the names of the immediate subdirectories of path.
func (f *OSFilesystem) ListDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// WalkFiles recursively visits regular files under root. Siblings are
// processed in natural order; pruned subdirectories are never descended
// into, so their contents incur no further filesystem calls.
func (f *OSFilesystem) WalkFiles(root string, prune func(dirName string) bool, visit func(ct.FileVisit) error) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", root, err)
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
		byName[entry.Name()] = entry
	}
	natsort.Sort(names)

	for _, name := range names {
		entry := byName[name]
		full := filepath.Join(root, name)

		if entry.IsDir() {
			if prune != nil && prune(name) {
				continue
			}
			if err := f.WalkFiles(full, prune, visit); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}

		// A failed stat degrades to zero size/mtime; the file stays cataloged.
		var size, mtime int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
			mtime = info.ModTime().Unix()
			if size < 0 {
				size = 0
			}
			if mtime < 0 {
				mtime = 0
			}
		}

		v := ct.FileVisit{
			AbsPath:   full,
			Name:      name,
			SizeBytes: size,
			Mtime:     mtime,
		}
		if err := visit(v); err != nil {
			return err
		}
	}
	return nil
}

// Compile-time check that OSFilesystem implements ct.Filesystem.
var _ ct.Filesystem = (*OSFilesystem)(nil)
