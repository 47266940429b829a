package model

// Course is a tracked root directory representing one learning package.
// Path is the stable identity key; Name is recomputed from the path's final
// segment on every scan.
type Course struct {
	ID               string // UUID
	Path             string // Absolute path on host, unique
	Name             string
	CreatedAt        int64   // Unix seconds
	LastOpenedItemID *string // nil until something is opened
	LastOpenedAt     *int64
}

// Item is one cataloged file within a course. (CourseID, RelPath) is unique;
// RelPath is the identity that survives rescans.
type Item struct {
	ID        string // UUID
	CourseID  string
	RelPath   string // Relative to the course root
	AbsPath   string
	Section   string // Top-level subfolder under the course root
	Name      string // Base file name
	Ext       string // Lowercase, including the leading dot
	SizeBytes int64  // 0 when the stat failed
	Mtime     int64  // Unix seconds, 0 when the stat failed
	Ignored   bool   // Reserved for manual exclusion; scanner always writes false
}

// Progress is the completion/open-tracking state attached to an Item,
// one-to-one. It is created with the item and destroyed only by cascade.
type Progress struct {
	ItemID       string
	Completed    bool
	CompletedAt  *int64 // Set iff Completed
	LastOpenedAt *int64
	OpenCount    int64
}

// ItemWithProgress is an item joined with its progress row, the shape most
// read paths want.
type ItemWithProgress struct {
	Item
	Progress
}

// ScanRecord is what the scanner collects for one file before reconciliation.
// It carries everything an Item row needs except identity.
type ScanRecord struct {
	RelPath   string
	AbsPath   string
	Section   string
	Name      string
	Ext       string
	SizeBytes int64
	Mtime     int64
}

// CourseProgress aggregates completion over a course's non-ignored items.
type CourseProgress struct {
	CompletedCount int64
	TotalCount     int64
	CompletedBytes int64
	TotalBytes     int64
}

// GlobalLastOpened identifies the single most recently opened item across
// all courses.
type GlobalLastOpened struct {
	CourseID     string
	CoursePath   string
	CourseName   string
	ItemID       string
	AbsPath      string
	RelPath      string
	LastOpenedAt int64
}

// ScanOperation is one row of the scan log.
type ScanOperation struct {
	ID         int64
	CourseID   string
	CoursePath string
	StartedAt  int64
	FinishedAt *int64
	Status     string // "running", "ok", or "failed"
	ItemCount  int64
}
