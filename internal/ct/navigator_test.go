package ct_test

import (
	"errors"
	"testing"
	"time"

	"ct-go/internal/ct"
	"ct-go/internal/model"
	"ct-go/internal/testutil"
)

// seedCourse catalogs three items in one section and returns their ids in
// natural order.
func seedCourse(t *testing.T, store ct.Store) (courseID string, itemIDs []string) {
	t.Helper()

	records := []model.ScanRecord{}
	for _, name := range []string{"Lecture 1.mp4", "Lecture 2.mp4", "Lecture 3.mp4"} {
		records = append(records, model.ScanRecord{
			RelPath: "01 Intro/" + name,
			AbsPath: "/courses/go/01 Intro/" + name,
			Section: "01 Intro",
			Name:    name,
			Ext:     ".mp4",
		})
	}
	courseID, err := store.ReconcileCourse("/courses/go", "go", records)
	if err != nil {
		t.Fatalf("ReconcileCourse() error = %v", err)
	}

	items, err := store.ListCourseItems(courseID, false)
	if err != nil {
		t.Fatalf("ListCourseItems() error = %v", err)
	}
	byName := map[string]string{}
	for _, it := range items {
		byName[it.Name] = it.Item.ID
	}
	return courseID, []string{
		byName["Lecture 1.mp4"],
		byName["Lecture 2.mp4"],
		byName["Lecture 3.mp4"],
	}
}

func TestNavigator_OpenItem(t *testing.T) {
	t.Run("launches and records the open", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)

		courseID, ids := seedCourse(t, store)
		if err := nav.OpenItem(courseID, ids[0]); err != nil {
			t.Fatalf("OpenItem() error = %v", err)
		}

		if got := launcher.OpenedPaths(); len(got) != 1 {
			t.Fatalf("opened paths = %v, want one", got)
		}
		item, _ := store.GetItem(ids[0])
		if item.OpenCount != 1 {
			t.Errorf("OpenCount = %d, want 1", item.OpenCount)
		}
	})

	t.Run("stale id is reported without launching", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)

		courseID, _ := seedCourse(t, store)
		err := nav.OpenItem(courseID, "stale")
		if !errors.Is(err, ct.ErrItemNotFound) {
			t.Errorf("OpenItem() error = %v, want ErrItemNotFound", err)
		}
		if len(launcher.OpenedPaths()) != 0 {
			t.Error("launcher was invoked for a stale id")
		}
	})

	t.Run("item from another course is reported without launching", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)

		_, ids := seedCourse(t, store)
		otherID, err := store.ReconcileCourse("/courses/rust", "rust", nil)
		if err != nil {
			t.Fatalf("ReconcileCourse() error = %v", err)
		}

		err = nav.OpenItem(otherID, ids[0])
		if !errors.Is(err, ct.ErrItemNotFound) {
			t.Errorf("OpenItem() error = %v, want ErrItemNotFound", err)
		}
		if len(launcher.OpenedPaths()) != 0 {
			t.Error("launcher was invoked for a foreign item")
		}
		item, _ := store.GetItem(ids[0])
		if item.OpenCount != 0 {
			t.Errorf("OpenCount = %d, want 0", item.OpenCount)
		}
	})

	t.Run("failed launch still counts when configured", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)

		courseID, ids := seedCourse(t, store)
		item, _ := store.GetItem(ids[0])
		launcher.FailOn(item.AbsPath)

		err := nav.OpenItem(courseID, ids[0])
		var launchErr *ct.LaunchError
		if !errors.As(err, &launchErr) {
			t.Fatalf("OpenItem() error = %v, want *LaunchError", err)
		}

		after, _ := store.GetItem(ids[0])
		if after.OpenCount != 1 {
			t.Errorf("OpenCount = %d, want 1 despite launch failure", after.OpenCount)
		}
	})

	t.Run("failed launch skips bookkeeping when disabled", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), false)

		courseID, ids := seedCourse(t, store)
		item, _ := store.GetItem(ids[0])
		launcher.FailOn(item.AbsPath)

		err := nav.OpenItem(courseID, ids[0])
		var launchErr *ct.LaunchError
		if !errors.As(err, &launchErr) {
			t.Fatalf("OpenItem() error = %v, want *LaunchError", err)
		}

		after, _ := store.GetItem(ids[0])
		if after.OpenCount != 0 {
			t.Errorf("OpenCount = %d, want 0", after.OpenCount)
		}
	})
}

func TestNavigator_OpenNext(t *testing.T) {
	setup := func(t *testing.T) (ct.Store, *testutil.StubLauncher, *ct.Navigator, string, []string) {
		t.Helper()
		store, _, _ := testutil.NewTestStore(t)
		launcher := testutil.NewStubLauncher()
		nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)
		courseID, ids := seedCourse(t, store)
		return store, launcher, nav, courseID, ids
	}

	t.Run("completes current and opens its successor", func(t *testing.T) {
		store, launcher, nav, courseID, ids := setup(t)

		gotNext, err := nav.OpenNext(courseID, ids, ids[0])
		if err != nil {
			t.Fatalf("OpenNext() error = %v", err)
		}
		if gotNext != ids[1] {
			t.Errorf("OpenNext() = %s, want %s", gotNext, ids[1])
		}

		first, _ := store.GetItem(ids[0])
		if !first.Completed {
			t.Error("current item not marked completed")
		}
		second, _ := store.GetItem(ids[1])
		if second.OpenCount != 1 {
			t.Errorf("successor OpenCount = %d, want 1", second.OpenCount)
		}
		if len(launcher.OpenedPaths()) != 1 {
			t.Errorf("opened paths = %v, want one", launcher.OpenedPaths())
		}
	})

	t.Run("last item only gets completed", func(t *testing.T) {
		store, launcher, nav, courseID, ids := setup(t)

		gotNext, err := nav.OpenNext(courseID, ids, ids[2])
		if err != nil {
			t.Fatalf("OpenNext() error = %v", err)
		}
		if gotNext != "" {
			t.Errorf("OpenNext() = %s, want empty", gotNext)
		}

		last, _ := store.GetItem(ids[2])
		if !last.Completed {
			t.Error("last item not marked completed")
		}
		if len(launcher.OpenedPaths()) != 0 {
			t.Error("launcher invoked past the end of the course")
		}
	})

	t.Run("item filtered out of the ordering only gets completed", func(t *testing.T) {
		_, launcher, nav, courseID, ids := setup(t)

		// Caller's visible ordering omits the middle item.
		visible := []string{ids[0], ids[2]}
		gotNext, err := nav.OpenNext(courseID, visible, ids[1])
		if err != nil {
			t.Fatalf("OpenNext() error = %v", err)
		}
		if gotNext != "" || len(launcher.OpenedPaths()) != 0 {
			t.Errorf("OpenNext() = %q, opened %v; want no navigation", gotNext, launcher.OpenedPaths())
		}
	})
}

func TestNavigator_ResumeGlobal(t *testing.T) {
	t.Run("returns ErrNoHistory on a fresh catalog", func(t *testing.T) {
		store, _, _ := testutil.NewTestStore(t)
		nav := ct.NewNavigator(store, testutil.NewStubLauncher(), ct.NewNopLogger(), true)

		_, err := nav.ResumeGlobal()
		if !errors.Is(err, ct.ErrNoHistory) {
			t.Errorf("ResumeGlobal() error = %v, want ErrNoHistory", err)
		}
	})

	t.Run("returns the most recent open", func(t *testing.T) {
		store, clock, _ := testutil.NewTestStore(t)
		nav := ct.NewNavigator(store, testutil.NewStubLauncher(), ct.NewNopLogger(), true)

		courseID, ids := seedCourse(t, store)
		if err := nav.OpenItem(courseID, ids[0]); err != nil {
			t.Fatalf("OpenItem() error = %v", err)
		}
		clock.Advance(time.Second)
		if err := nav.OpenItem(courseID, ids[1]); err != nil {
			t.Fatalf("OpenItem() error = %v", err)
		}

		last, err := nav.ResumeGlobal()
		if err != nil {
			t.Fatalf("ResumeGlobal() error = %v", err)
		}
		if last.ItemID != ids[1] {
			t.Errorf("ResumeGlobal() item = %s, want %s", last.ItemID, ids[1])
		}
	})
}

func TestNavigator_Reveal(t *testing.T) {
	store, _, _ := testutil.NewTestStore(t)
	launcher := testutil.NewStubLauncher()
	nav := ct.NewNavigator(store, launcher, ct.NewNopLogger(), true)

	if err := nav.Reveal("/courses/go/01 Intro/Lecture 1.mp4"); err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if len(launcher.Revealed) != 1 {
		t.Errorf("revealed paths = %v, want one", launcher.Revealed)
	}
}
