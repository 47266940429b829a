package ct

import (
	"sort"
	"strings"

	"ct-go/internal/model"
	"ct-go/internal/natsort"
)

// Scan log statuses.
const (
	ScanStatusRunning = "running"
	ScanStatusOK      = "ok"
	ScanStatusFailed  = "failed"
)

// Service is the orchestration layer the CLI talks to. It coordinates the
// scanner, the store, and the navigator for the operations that span more
// than one of them.
type Service struct {
	store     Store
	scanner   *Scanner
	navigator *Navigator
	logger    Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, scanner *Scanner, navigator *Navigator, logger Logger) *Service {
	return &Service{
		store:     store,
		scanner:   scanner,
		navigator: navigator,
		logger:    logger,
	}
}

// Navigator returns the sequential navigator.
func (s *Service) Navigator() *Navigator { return s.navigator }

// Store returns the underlying catalog store.
func (s *Service) Store() Store { return s.store }

// Scan catalogs (or re-catalogs) the course at rawPath and records the
// attempt in the scan log. Failed scans leave the catalog untouched.
func (s *Service) Scan(rawPath string) (string, error) {
	opID, logErr := s.store.BeginScan(rawPath)
	if logErr != nil {
		s.logger.Warn("scan log unavailable", "error", logErr)
	}

	courseID, err := s.scanner.Scan(rawPath)
	if logErr == nil {
		status, count := ScanStatusOK, int64(0)
		if err != nil {
			status = ScanStatusFailed
		} else if items, e := s.store.ListCourseItems(courseID, true); e == nil {
			count = int64(len(items))
		}
		if e := s.store.FinishScan(opID, courseID, status, count); e != nil {
			s.logger.Warn("finishing scan log entry", "error", e)
		}
	}
	return courseID, err
}

// CourseOverview is one course with its aggregated progress, for listings.
type CourseOverview struct {
	Course      model.Course
	Progress    model.CourseProgress
	LastRelPath string // rel_path of the course's last opened item, "" if none
}

// CourseOverviews returns every course with its progress, most recently used
// first. A non-empty query keeps only courses whose name or path contains it,
// case-insensitively.
func (s *Service) CourseOverviews(query string) ([]CourseOverview, error) {
	courses, err := s.store.ListCourses()
	if err != nil {
		return nil, err
	}

	q := natsort.Fold(query)
	var out []CourseOverview
	for _, c := range courses {
		if q != "" && !strings.Contains(natsort.Fold(c.Name), q) && !strings.Contains(natsort.Fold(c.Path), q) {
			continue
		}
		prog, err := s.store.CourseProgress(c.ID)
		if err != nil {
			return nil, err
		}
		ov := CourseOverview{Course: *c, Progress: prog}
		if c.LastOpenedItemID != nil {
			if item, err := s.store.GetItem(*c.LastOpenedItemID); err == nil && item != nil {
				ov.LastRelPath = item.RelPath
			}
		}
		out = append(out, ov)
	}
	return out, nil
}

// RescanCourse re-scans an existing course by id.
func (s *Service) RescanCourse(courseID string) error {
	course, err := s.store.GetCourse(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrCourseNotFound
	}
	_, err = s.Scan(course.Path)
	return err
}

// RemoveCourse deletes a course's tracking data (never its files).
func (s *Service) RemoveCourse(courseID string) error {
	course, err := s.store.GetCourse(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrCourseNotFound
	}
	if err := s.store.DeleteCourse(courseID); err != nil {
		return err
	}
	s.logger.Info("course removed", "course", courseID, "path", course.Path)
	return nil
}

// ContinueCourse opens the course's own last-opened item.
// Returns ErrNoHistory when the course was never opened.
func (s *Service) ContinueCourse(courseID string) error {
	course, err := s.store.GetCourse(courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrCourseNotFound
	}
	if course.LastOpenedItemID == nil {
		return ErrNoHistory
	}
	return s.navigator.OpenItem(courseID, *course.LastOpenedItemID)
}

// OpenNextFromLast resumes from the globally last-opened item and opens the
// item after it in its course's visible order. Returns the opened item id,
// or "" when the last item had no successor.
func (s *Service) OpenNextFromLast() (string, error) {
	last, err := s.navigator.ResumeGlobal()
	if err != nil {
		return "", err
	}
	ordered, err := s.VisibleItemIDs(last.CourseID, ItemFilter{})
	if err != nil {
		return "", err
	}
	return s.navigator.OpenNext(last.CourseID, ordered, last.ItemID)
}

// ItemFilter narrows a course's item list for display and navigation.
type ItemFilter struct {
	NameQuery     string // case-insensitive substring on the file name
	HideCompleted bool
}

// VisibleItems returns a course's non-ignored items after filtering, ordered
// by (natural section, natural rel_path) — the order navigation follows.
func (s *Service) VisibleItems(courseID string, filter ItemFilter) ([]*model.ItemWithProgress, error) {
	items, err := s.store.ListCourseItems(courseID, false)
	if err != nil {
		return nil, err
	}

	q := natsort.Fold(filter.NameQuery)
	filtered := items[:0]
	for _, it := range items {
		if filter.HideCompleted && it.Completed {
			continue
		}
		if q != "" && !strings.Contains(natsort.Fold(it.Name), q) {
			continue
		}
		filtered = append(filtered, it)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Section != filtered[j].Section {
			return natsort.Less(filtered[i].Section, filtered[j].Section)
		}
		return natsort.Less(filtered[i].RelPath, filtered[j].RelPath)
	})
	return filtered, nil
}

// VisibleItemIDs is VisibleItems reduced to the ordered id sequence the
// navigator consumes.
func (s *Service) VisibleItemIDs(courseID string, filter ItemFilter) ([]string, error) {
	items, err := s.VisibleItems(courseID, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Item.ID
	}
	return ids, nil
}
