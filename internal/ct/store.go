package ct

import "ct-go/internal/model"

// Store provides an interface for catalog persistence. Methods that span
// multiple logical writes must apply them in a single transaction so the
// catalog is never observed half-updated.
type Store interface {
	// Course operations

	// ReconcileCourse applies one scan's results atomically: upsert the
	// course by path (name refreshed), upsert every record by
	// (course, rel_path) leaving existing progress rows untouched, create
	// default progress rows for new items, then delete items whose rel_path
	// was not seen (cascading their progress). Returns the course id.
	ReconcileCourse(path, name string, records []model.ScanRecord) (string, error)

	// FindCourseByPath returns the course with an exact path match, or nil.
	FindCourseByPath(path string) (*model.Course, error)

	// GetCourse returns a course by id, or nil if it was deleted.
	GetCourse(id string) (*model.Course, error)

	// ListCourses returns all courses, most recently used first:
	// COALESCE(last_opened_at, created_at) descending, then name ascending.
	ListCourses() ([]*model.Course, error)

	// DeleteCourse removes a course and cascades to its items, progress,
	// and section state.
	DeleteCourse(id string) error

	// Item/progress operations

	// ListCourseItems returns a course's items joined with progress.
	// Ignored items are excluded unless includeIgnored is set.
	ListCourseItems(courseID string, includeIgnored bool) ([]*model.ItemWithProgress, error)

	// GetItem returns an item with its progress, or nil for a stale id.
	GetItem(itemID string) (*model.ItemWithProgress, error)

	// SetCompleted sets the completed flag. The transition to completed
	// stamps completed_at; the transition away clears it.
	SetCompleted(itemID string, completed bool) error

	// RecordOpen bumps the item's open count and last-opened stamp and
	// updates the owning course's last-opened pointers, atomically.
	RecordOpen(courseID, itemID string) error

	// CourseProgress aggregates completion over the course's non-ignored
	// items, treating a missing progress row as not completed.
	CourseProgress(courseID string) (model.CourseProgress, error)

	// GlobalLastOpened returns the most recently opened non-ignored item
	// across all courses, or nil if nothing has ever been opened.
	GlobalLastOpened() (*model.GlobalLastOpened, error)

	// Section state operations

	// SectionStates returns the persisted collapsed flags for a course.
	// Sections absent from the map default to expanded.
	SectionStates(courseID string) (map[string]bool, error)

	// SetSectionCollapsed upserts the persisted flag for one section.
	SetSectionCollapsed(courseID, section string, collapsed bool) error

	// ClearSectionStates deletes all section state rows for a course.
	ClearSectionStates(courseID string) error

	// Scan log operations

	// BeginScan records the start of a scan and returns its log id.
	BeginScan(coursePath string) (int64, error)

	// FinishScan stamps a scan's outcome, resolved course id, and item count.
	FinishScan(id int64, courseID, status string, itemCount int64) error

	// ListScans returns the newest scans first, up to limit.
	ListScans(limit int) ([]*model.ScanOperation, error)

	// Close releases the underlying connection.
	Close() error
}
