package ct

import (
	"path/filepath"
	"strings"

	"ct-go/internal/model"
	"ct-go/internal/natsort"
)

// IgnorePolicy decides which folders and file extensions are excluded
// from a scan.
type IgnorePolicy interface {
	FolderIgnored(name string) bool
	ExtIgnored(ext string) bool
}

// Scanner walks a course's directory tree, classifies files through the
// ignore policy, and reconciles the result into the store.
//
// Scans are all-or-nothing: the whole tree is enumerated into memory first
// and only then written in a single transaction, so an enumeration failure
// leaves the existing catalog for that course untouched. Rescanning an
// unchanged tree changes nothing — item identity is (course, rel_path) and
// reconciliation upserts in place.
type Scanner struct {
	store  Store
	fsys   Filesystem
	policy IgnorePolicy
	logger Logger
}

// NewScanner creates a Scanner with the provided dependencies.
func NewScanner(store Store, fsys Filesystem, policy IgnorePolicy, logger Logger) *Scanner {
	return &Scanner{
		store:  store,
		fsys:   fsys,
		policy: policy,
		logger: logger,
	}
}

// Scan catalogs the course rooted at rawPath and returns its course id.
// Returns ErrNotADirectory when the path does not resolve to a directory and
// a *DirectoryReadError when the tree cannot be enumerated; in both cases no
// catalog state has changed.
func (s *Scanner) Scan(rawPath string) (string, error) {
	coursePath, err := s.fsys.ResolveDir(rawPath)
	if err != nil {
		return "", err
	}
	name := courseName(coursePath)

	records, err := s.collect(coursePath)
	if err != nil {
		return "", err
	}

	courseID, err := s.store.ReconcileCourse(coursePath, name, records)
	if err != nil {
		return "", err
	}

	s.logger.Info("course scanned", "path", coursePath, "items", len(records))
	return courseID, nil
}

// collect enumerates every catalogable file under coursePath.
func (s *Scanner) collect(coursePath string) ([]model.ScanRecord, error) {
	sections, err := s.fsys.ListDirs(coursePath)
	if err != nil {
		return nil, &DirectoryReadError{Path: coursePath, Err: err}
	}
	natsort.Sort(sections)

	records := []model.ScanRecord{}
	for _, section := range sections {
		if s.policy.FolderIgnored(section) {
			s.logger.Debug("section ignored", "section", section)
			continue
		}

		sectionPath := filepath.Join(coursePath, section)
		err := s.fsys.WalkFiles(sectionPath, s.policy.FolderIgnored, func(v FileVisit) error {
			ext := strings.ToLower(filepath.Ext(v.Name))
			if s.policy.ExtIgnored(ext) {
				return nil
			}
			relPath, err := filepath.Rel(coursePath, v.AbsPath)
			if err != nil {
				return err
			}
			records = append(records, model.ScanRecord{
				RelPath:   relPath,
				AbsPath:   v.AbsPath,
				Section:   section,
				Name:      v.Name,
				Ext:       ext,
				SizeBytes: v.SizeBytes,
				Mtime:     v.Mtime,
			})
			return nil
		})
		if err != nil {
			return nil, &DirectoryReadError{Path: sectionPath, Err: err}
		}
	}
	return records, nil
}

// courseName derives the display name from the path's final segment.
func courseName(coursePath string) string {
	name := filepath.Base(strings.TrimRight(coursePath, "\\/"))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return coursePath
	}
	return name
}
