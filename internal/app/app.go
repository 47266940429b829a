package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ct-go/internal/config"
	"ct-go/internal/ct"
	"ct-go/internal/database"
	"ct-go/internal/fs"
	"ct-go/internal/launch"
	"ct-go/internal/model"
)

// CTApp is the application layer between the CLI and the catalog service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string arguments, and manages the store lifecycle on Close.
type CTApp struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *ct.Service
	logFile *os.File
}

// NewCTApp creates a fully wired CTApp from the given config.
// operation identifies the CLI command being run (e.g. "Add", "Rescan").
// The caller must call Close when done.
func NewCTApp(cfg *config.Config, operation string) (*CTApp, error) {
	policy := fs.NewPolicy(
		cfg.Filesystem.IgnoreFolders,
		cfg.Filesystem.IgnoreFolderSubstrings,
		cfg.Filesystem.IgnoreExtensions,
	)
	fsys := fs.NewOSFilesystem()

	store, err := database.NewStoreFromConfig(cfg.Database, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}
	logger.Info("starting", "operation", operation)

	scanner := ct.NewScanner(store, fsys, policy, logger)
	launcher := launch.NewOSLauncher()
	navigator := ct.NewNavigator(store, launcher, logger, cfg.Navigator.RecordFailedOpens)
	service := ct.NewService(store, scanner, navigator, logger)

	return &CTApp{
		cfg:     cfg,
		store:   store,
		service: service,
		logFile: logFile,
	}, nil
}

// AddCourse scans the directory at rawPath and registers (or refreshes) it
// as a course. Returns the course ID.
func (a *CTApp) AddCourse(rawPath string) (string, error) {
	return a.service.Scan(rawPath)
}

// Courses returns all courses with their progress, most recently used
// first. query, when non-empty, filters by name or path substring.
func (a *CTApp) Courses(query string) ([]ct.CourseOverview, error) {
	return a.service.CourseOverviews(query)
}

// RescanCourse re-walks a known course's directory tree.
func (a *CTApp) RescanCourse(courseID string) error {
	return a.service.RescanCourse(courseID)
}

// RemoveCourse drops a course and all its items, progress, and section
// state from the catalog. Files on disk are untouched.
func (a *CTApp) RemoveCourse(courseID string) error {
	return a.service.RemoveCourse(courseID)
}

// Items returns a course's visible items in section-then-path order.
func (a *CTApp) Items(courseID string, filter ct.ItemFilter) ([]*model.ItemWithProgress, error) {
	return a.service.VisibleItems(courseID, filter)
}

// OpenItem launches an item's file and records the open.
func (a *CTApp) OpenItem(itemID string) error {
	item, err := a.service.Store().GetItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ct.ErrItemNotFound
	}
	return a.service.Navigator().OpenItem(item.CourseID, itemID)
}

// SetCompleted marks an item done or not done.
func (a *CTApp) SetCompleted(itemID string, completed bool) error {
	return a.service.Store().SetCompleted(itemID, completed)
}

// OpenNext marks the given item completed and opens the one after it in
// the course's visible ordering. Returns the ID of the opened item, or ""
// when the course is finished.
func (a *CTApp) OpenNext(itemID string) (string, error) {
	item, err := a.service.Store().GetItem(itemID)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", ct.ErrItemNotFound
	}
	ordered, err := a.service.VisibleItemIDs(item.CourseID, ct.ItemFilter{})
	if err != nil {
		return "", err
	}
	return a.service.Navigator().OpenNext(item.CourseID, ordered, itemID)
}

// ContinueCourse reopens the course's last opened item.
func (a *CTApp) ContinueCourse(courseID string) error {
	return a.service.ContinueCourse(courseID)
}

// Resume reopens the most recently opened item across all courses.
func (a *CTApp) Resume() (*model.GlobalLastOpened, error) {
	last, err := a.service.Navigator().ResumeGlobal()
	if err != nil {
		return nil, err
	}
	if err := a.service.Navigator().OpenItem(last.CourseID, last.ItemID); err != nil {
		return nil, err
	}
	return last, nil
}

// ResumeNext completes the globally last opened item and opens its
// successor. Returns the ID of the opened item, or "" when that course
// is finished.
func (a *CTApp) ResumeNext() (string, error) {
	return a.service.OpenNextFromLast()
}

// Reveal opens the file manager at the location of the item or course
// with the given ID.
func (a *CTApp) Reveal(id string) error {
	item, err := a.service.Store().GetItem(id)
	if err != nil {
		return err
	}
	if item != nil {
		return a.service.Navigator().Reveal(item.AbsPath)
	}

	course, err := a.service.Store().GetCourse(id)
	if err != nil {
		return err
	}
	if course != nil {
		return a.service.Navigator().Reveal(course.Path)
	}
	return ct.ErrItemNotFound
}

// Sections returns the section collapse controller for a course.
func (a *CTApp) Sections(courseID string) (*ct.SectionController, error) {
	return ct.LoadSections(a.service.Store(), courseID)
}

// History returns the most recent scan operations.
func (a *CTApp) History(limit int) ([]*model.ScanOperation, error) {
	return a.service.Store().ListScans(limit)
}

// GetCourse looks up a course by ID, or nil when absent.
func (a *CTApp) GetCourse(courseID string) (*model.Course, error) {
	return a.service.Store().GetCourse(courseID)
}

// FindCourse resolves a course reference that may be a course ID or a
// directory path.
func (a *CTApp) FindCourse(ref string) (*model.Course, error) {
	course, err := a.service.Store().GetCourse(ref)
	if err != nil {
		return nil, err
	}
	if course != nil {
		return course, nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	course, err = a.service.Store().FindCourseByPath(abs)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ct.ErrCourseNotFound
	}
	return course, nil
}

// Close releases the store and the log file.
func (a *CTApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
