package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ct-go/internal/config"
	"ct-go/internal/ct"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig(t.TempDir())
	cfg.Database.Type = "memory"
	return cfg
}

func newTestApp(t *testing.T) *CTApp {
	t.Helper()
	a, err := NewCTApp(testConfig(t), "Test")
	if err != nil {
		t.Fatalf("NewCTApp() error = %v", err)
	}
	t.Cleanup(func() {
		a.Close()
	})
	return a
}

func courseDir(t *testing.T, files ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Go Course")
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("creating directory: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
			t.Fatalf("writing file: %v", err)
		}
	}
	return root
}

func TestCTApp_AddAndList(t *testing.T) {
	a := newTestApp(t)
	root := courseDir(t, "01 Intro/Lecture 1.mp4", "01 Intro/Lecture 2.mp4")

	courseID, err := a.AddCourse(root)
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}

	overviews, err := a.Courses("")
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if len(overviews) != 1 {
		t.Fatalf("len(overviews) = %d, want 1", len(overviews))
	}
	if overviews[0].Course.ID != courseID || overviews[0].Progress.TotalCount != 2 {
		t.Errorf("overview = %+v, want 2 items in %s", overviews[0], courseID)
	}
}

func TestCTApp_FindCourse(t *testing.T) {
	a := newTestApp(t)
	root := courseDir(t, "01 Intro/Lecture 1.mp4")

	courseID, err := a.AddCourse(root)
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}

	t.Run("by id", func(t *testing.T) {
		course, err := a.FindCourse(courseID)
		if err != nil {
			t.Fatalf("FindCourse() error = %v", err)
		}
		if course.ID != courseID {
			t.Errorf("FindCourse() = %s, want %s", course.ID, courseID)
		}
	})

	t.Run("by path", func(t *testing.T) {
		course, err := a.FindCourse(root)
		if err != nil {
			t.Fatalf("FindCourse() error = %v", err)
		}
		if course.ID != courseID {
			t.Errorf("FindCourse() = %s, want %s", course.ID, courseID)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := a.FindCourse("nope")
		if !errors.Is(err, ct.ErrCourseNotFound) {
			t.Errorf("FindCourse() error = %v, want ErrCourseNotFound", err)
		}
	})
}

func TestCTApp_ItemsAndCompletion(t *testing.T) {
	a := newTestApp(t)
	root := courseDir(t, "01 Intro/Lecture 1.mp4", "01 Intro/Lecture 2.mp4")

	courseID, err := a.AddCourse(root)
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}

	items, err := a.Items(courseID, ct.ItemFilter{})
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	if err := a.SetCompleted(items[0].Item.ID, true); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}

	remaining, err := a.Items(courseID, ct.ItemFilter{HideCompleted: true})
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].Item.ID != items[1].Item.ID {
		t.Errorf("remaining = %+v, want only the second item", remaining)
	}
}

func TestCTApp_RemoveCourse(t *testing.T) {
	a := newTestApp(t)
	root := courseDir(t, "01 Intro/Lecture 1.mp4")

	courseID, err := a.AddCourse(root)
	if err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}

	if err := a.RemoveCourse(courseID); err != nil {
		t.Fatalf("RemoveCourse() error = %v", err)
	}

	overviews, _ := a.Courses("")
	if len(overviews) != 0 {
		t.Errorf("overviews = %+v, want none", overviews)
	}

	// The directory itself is untouched.
	if _, err := os.Stat(filepath.Join(root, "01 Intro", "Lecture 1.mp4")); err != nil {
		t.Errorf("course files were touched: %v", err)
	}
}

func TestCTApp_History(t *testing.T) {
	a := newTestApp(t)
	root := courseDir(t, "01 Intro/Lecture 1.mp4")

	if _, err := a.AddCourse(root); err != nil {
		t.Fatalf("AddCourse() error = %v", err)
	}

	ops, err := a.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Status != ct.ScanStatusOK {
		t.Errorf("ops = %+v, want one ok scan", ops)
	}
}
