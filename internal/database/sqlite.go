package database

import (
	"database/sql"
	"errors"
	"fmt"

	"ct-go/internal/ct"
	"ct-go/internal/database/migrations"
	"ct-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the ct.Store interface using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	clock ct.Clock
	idgen ct.IDGenerator
}

// NewSQLiteStore creates a new SQLite store.
// path can be a file path or ":memory:" for an in-memory database.
// clock and idgen may be nil, in which case real implementations are used.
func NewSQLiteStore(path string, clock ct.Clock, idgen ct.IDGenerator) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStoreFromDB(db, clock, idgen, path), nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB, clock ct.Clock, idgen ct.IDGenerator, path string) *SQLiteStore {
	if clock == nil {
		clock = ct.RealClock{}
	}
	if idgen == nil {
		idgen = ct.UUIDGenerator{}
	}
	return &SQLiteStore{db: db, path: path, clock: clock, idgen: idgen}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Cascading deletes depend on this; SQLite defaults it to OFF.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Course operations

func (s *SQLiteStore) ReconcileCourse(path, name string, records []model.ScanRecord) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.clock.Now().Unix()

	// Upsert the course by path; the path is the identity, the name follows
	// renames of the root folder.
	_, err = tx.Exec(`
		INSERT INTO courses(id, path, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET name = excluded.name`,
		s.idgen.New(), path, name, now)
	if err != nil {
		return "", fmt.Errorf("upserting course: %w", err)
	}

	var courseID string
	if err := tx.QueryRow(`SELECT id FROM courses WHERE path = ?`, path).Scan(&courseID); err != nil {
		return "", fmt.Errorf("reading course id after upsert: %w", err)
	}

	upsertItem, err := tx.Prepare(`
		INSERT INTO items(id, course_id, rel_path, abs_path, section, name, ext, size_bytes, mtime, ignored)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(course_id, rel_path) DO UPDATE SET
			abs_path = excluded.abs_path,
			section = excluded.section,
			name = excluded.name,
			ext = excluded.ext,
			size_bytes = excluded.size_bytes,
			mtime = excluded.mtime`)
	if err != nil {
		return "", fmt.Errorf("preparing item upsert: %w", err)
	}
	defer upsertItem.Close()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, err := upsertItem.Exec(s.idgen.New(), courseID, r.RelPath, r.AbsPath, r.Section, r.Name, r.Ext, r.SizeBytes, r.Mtime); err != nil {
			return "", fmt.Errorf("upserting item %s: %w", r.RelPath, err)
		}

		var itemID string
		if err := tx.QueryRow(`SELECT id FROM items WHERE course_id = ? AND rel_path = ?`, courseID, r.RelPath).Scan(&itemID); err != nil {
			return "", fmt.Errorf("reading item id after upsert: %w", err)
		}

		// A new item gets a default progress row; an existing one keeps its.
		if _, err := tx.Exec(`INSERT INTO progress(item_id) VALUES (?) ON CONFLICT(item_id) DO NOTHING`, itemID); err != nil {
			return "", fmt.Errorf("creating progress row: %w", err)
		}

		seen[r.RelPath] = struct{}{}
	}

	// Reconciliation: drop items whose files vanished, cascading progress.
	rows, err := tx.Query(`SELECT id, rel_path FROM items WHERE course_id = ?`, courseID)
	if err != nil {
		return "", fmt.Errorf("listing existing items: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id, relPath string
		if err := rows.Scan(&id, &relPath); err != nil {
			rows.Close()
			return "", fmt.Errorf("scanning existing item: %w", err)
		}
		if _, ok := seen[relPath]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("listing existing items: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
			return "", fmt.Errorf("deleting missing item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return courseID, nil
}

const courseColumns = `id, path, name, created_at, last_opened_item_id, last_opened_at`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	var lastItem sql.NullString
	var lastAt sql.NullInt64
	if err := row.Scan(&c.ID, &c.Path, &c.Name, &c.CreatedAt, &lastItem, &lastAt); err != nil {
		return nil, err
	}
	if lastItem.Valid {
		c.LastOpenedItemID = &lastItem.String
	}
	if lastAt.Valid {
		c.LastOpenedAt = &lastAt.Int64
	}
	return &c, nil
}

func (s *SQLiteStore) FindCourseByPath(path string) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseColumns+` FROM courses WHERE path = ?`, path)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding course by path: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCourse(id string) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding course by id: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCourses() ([]*model.Course, error) {
	rows, err := s.db.Query(`
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY COALESCE(last_opened_at, created_at) DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var out []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteCourse(id string) error {
	if _, err := s.db.Exec(`DELETE FROM courses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return nil
}

// Item/progress operations

const itemColumns = `
	i.id, i.course_id, i.rel_path, i.abs_path, i.section, i.name, i.ext,
	i.size_bytes, i.mtime, i.ignored,
	COALESCE(p.completed, 0), p.completed_at, p.last_opened_at, COALESCE(p.open_count, 0)`

func scanItem(row interface{ Scan(...any) error }) (*model.ItemWithProgress, error) {
	var it model.ItemWithProgress
	var ignored, completed int64
	var completedAt, lastOpenedAt sql.NullInt64
	err := row.Scan(
		&it.Item.ID, &it.CourseID, &it.RelPath, &it.AbsPath, &it.Section, &it.Name, &it.Ext,
		&it.SizeBytes, &it.Mtime, &ignored,
		&completed, &completedAt, &lastOpenedAt, &it.OpenCount,
	)
	if err != nil {
		return nil, err
	}
	it.ItemID = it.Item.ID
	it.Ignored = ignored != 0
	it.Completed = completed != 0
	if completedAt.Valid {
		it.CompletedAt = &completedAt.Int64
	}
	if lastOpenedAt.Valid {
		it.Progress.LastOpenedAt = &lastOpenedAt.Int64
	}
	return &it, nil
}

func (s *SQLiteStore) ListCourseItems(courseID string, includeIgnored bool) ([]*model.ItemWithProgress, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		LEFT JOIN progress p ON p.item_id = i.id
		WHERE i.course_id = ?`
	if !includeIgnored {
		query += ` AND i.ignored = 0`
	}

	rows, err := s.db.Query(query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing course items: %w", err)
	}
	defer rows.Close()

	var out []*model.ItemWithProgress
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing course items: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetItem(itemID string) (*model.ItemWithProgress, error) {
	row := s.db.QueryRow(`
		SELECT `+itemColumns+`
		FROM items i
		LEFT JOIN progress p ON p.item_id = i.id
		WHERE i.id = ?`, itemID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding item by id: %w", err)
	}
	return it, nil
}

func (s *SQLiteStore) SetCompleted(itemID string, completed bool) error {
	var completedAt sql.NullInt64
	completedVal := 0
	if completed {
		completedVal = 1
		completedAt = sql.NullInt64{Int64: s.clock.Now().Unix(), Valid: true}
	}

	res, err := s.db.Exec(`
		UPDATE progress
		SET completed = ?, completed_at = ?
		WHERE item_id = ?`, completedVal, completedAt, itemID)
	if err != nil {
		return fmt.Errorf("setting completed flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting completed flag: %w", err)
	}
	if n == 0 {
		return ct.ErrItemNotFound
	}
	return nil
}

// RecordOpen stamps the item's progress and the owning course's last-opened
// pointers in one transaction, so the "continue course" and "global last
// opened" views never disagree.
func (s *SQLiteStore) RecordOpen(courseID, itemID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.clock.Now().Unix()

	res, err := tx.Exec(`
		UPDATE progress
		SET last_opened_at = ?, open_count = open_count + 1
		WHERE item_id = ?`, now, itemID)
	if err != nil {
		return fmt.Errorf("recording item open: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("recording item open: %w", err)
	} else if n == 0 {
		return ct.ErrItemNotFound
	}

	res, err = tx.Exec(`
		UPDATE courses
		SET last_opened_item_id = ?, last_opened_at = ?
		WHERE id = ?`, itemID, now, courseID)
	if err != nil {
		return fmt.Errorf("recording course open: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("recording course open: %w", err)
	} else if n == 0 {
		return ct.ErrCourseNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CourseProgress(courseID string) (model.CourseProgress, error) {
	var p model.CourseProgress
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN p.completed = 1 THEN 1 ELSE 0 END), 0) AS completed_count,
			COUNT(*) AS total_count,
			COALESCE(SUM(CASE WHEN p.completed = 1 THEN i.size_bytes ELSE 0 END), 0) AS completed_bytes,
			COALESCE(SUM(i.size_bytes), 0) AS total_bytes
		FROM items i
		LEFT JOIN progress p ON p.item_id = i.id
		WHERE i.course_id = ? AND i.ignored = 0`, courseID).
		Scan(&p.CompletedCount, &p.TotalCount, &p.CompletedBytes, &p.TotalBytes)
	if err != nil {
		return model.CourseProgress{}, fmt.Errorf("aggregating course progress: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) GlobalLastOpened() (*model.GlobalLastOpened, error) {
	var g model.GlobalLastOpened
	err := s.db.QueryRow(`
		SELECT
			c.id, c.path, c.name,
			i.id, i.abs_path, i.rel_path,
			p.last_opened_at
		FROM progress p
		JOIN items i ON i.id = p.item_id
		JOIN courses c ON c.id = i.course_id
		WHERE p.last_opened_at IS NOT NULL AND i.ignored = 0
		ORDER BY p.last_opened_at DESC
		LIMIT 1`).
		Scan(&g.CourseID, &g.CoursePath, &g.CourseName, &g.ItemID, &g.AbsPath, &g.RelPath, &g.LastOpenedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Nothing opened yet
	}
	if err != nil {
		return nil, fmt.Errorf("finding global last opened: %w", err)
	}
	return &g, nil
}

// Section state operations

func (s *SQLiteStore) SectionStates(courseID string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT section, collapsed FROM section_state WHERE course_id = ?`, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing section states: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var section string
		var collapsed int64
		if err := rows.Scan(&section, &collapsed); err != nil {
			return nil, fmt.Errorf("scanning section state: %w", err)
		}
		out[section] = collapsed != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing section states: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SetSectionCollapsed(courseID, section string, collapsed bool) error {
	collapsedVal := 0
	if collapsed {
		collapsedVal = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO section_state(course_id, section, collapsed)
		VALUES (?, ?, ?)
		ON CONFLICT(course_id, section) DO UPDATE SET collapsed = excluded.collapsed`,
		courseID, section, collapsedVal)
	if err != nil {
		return fmt.Errorf("setting section state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ClearSectionStates(courseID string) error {
	if _, err := s.db.Exec(`DELETE FROM section_state WHERE course_id = ?`, courseID); err != nil {
		return fmt.Errorf("clearing section states: %w", err)
	}
	return nil
}

// Scan log operations

func (s *SQLiteStore) BeginScan(coursePath string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scan_log(course_path, started_at, status)
		VALUES (?, ?, ?)`, coursePath, s.clock.Now().Unix(), ct.ScanStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("creating scan log entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating scan log entry: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) FinishScan(id int64, courseID, status string, itemCount int64) error {
	_, err := s.db.Exec(`
		UPDATE scan_log
		SET finished_at = ?, course_id = ?, status = ?, item_count = ?
		WHERE id = ?`, s.clock.Now().Unix(), courseID, status, itemCount, id)
	if err != nil {
		return fmt.Errorf("finishing scan log entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListScans(limit int) ([]*model.ScanOperation, error) {
	rows, err := s.db.Query(`
		SELECT id, course_path, course_id, started_at, finished_at, status, item_count
		FROM scan_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	var out []*model.ScanOperation
	for rows.Next() {
		var op model.ScanOperation
		var finishedAt sql.NullInt64
		if err := rows.Scan(&op.ID, &op.CoursePath, &op.CourseID, &op.StartedAt, &finishedAt, &op.Status, &op.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning scan log entry: %w", err)
		}
		if finishedAt.Valid {
			op.FinishedAt = &finishedAt.Int64
		}
		out = append(out, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return out, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the database schema to the latest version.
func (s *SQLiteStore) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements ct.Store
var _ ct.Store = (*SQLiteStore)(nil)
