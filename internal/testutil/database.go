package testutil

import (
	"testing"

	"ct-go/internal/database"
)

// NewTestStore creates a new in-memory SQLite store with schema applied.
// It uses a FixedClock and a StubIDGenerator; both are returned for tests
// that need to control time or predict IDs.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) (*database.SQLiteStore, *StubClock, *StubIDGenerator) {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	clock := FixedClock()
	idgen := NewStubIDGenerator()
	store := database.NewSQLiteStoreFromDB(sqlDB, clock, idgen, ":memory:")

	if err := store.Migrate(); err != nil {
		store.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store, clock, idgen
}
