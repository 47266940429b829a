package database

import (
	"fmt"
	"path/filepath"

	"ct-go/internal/config"
	"ct-go/internal/ct"
)

// CatalogFilename is the name of the sqlite database file under the
// configured data directory.
const CatalogFilename = "catalog.db"

// NewStoreFromConfig creates a store based on the database configuration.
func NewStoreFromConfig(cfg config.DatabaseConfig, clock ct.Clock, idgen ct.IDGenerator) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite database requires data_dir")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, CatalogFilename), clock, idgen)
	case "memory":
		store, err := NewSQLiteStore(":memory:", clock, idgen)
		if err != nil {
			return nil, err
		}
		// An in-memory database starts empty every run.
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
