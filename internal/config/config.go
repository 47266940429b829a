package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ct.
type Config struct {
	// BaseDir is where ct keeps its data (database, logs) unless
	// overridden per concern.
	BaseDir string `toml:"base_dir"`

	// LogDir overrides where log files are written. Defaults to
	// <base_dir>/logs.
	LogDir string `toml:"log_dir,omitempty"`

	Database   DatabaseConfig   `toml:"database"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Navigator  NavigatorConfig  `toml:"navigator"`
}

// DatabaseConfig represents configuration for the catalog store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"` // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"`
}

// FilesystemConfig extends the scanner's built-in deny lists.
type FilesystemConfig struct {
	IgnoreFolders          []string `toml:"ignore_folders,omitempty"`
	IgnoreFolderSubstrings []string `toml:"ignore_folder_substrings,omitempty"`
	IgnoreExtensions       []string `toml:"ignore_extensions,omitempty"`
}

// NavigatorConfig controls how opens are tracked.
type NavigatorConfig struct {
	// RecordFailedOpens keeps counting an item as opened even when
	// launching the external application fails.
	RecordFailedOpens bool `toml:"record_failed_opens"`
}

// NewConfig creates a new Config with the provided base directory and default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "logs"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: baseDir,
		},
		Navigator: NavigatorConfig{
			RecordFailedOpens: true,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader, applying defaults for
// unset fields.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("base_dir is required")
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.BaseDir, "logs")
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.DataDir == "" {
		cfg.Database.DataDir = cfg.BaseDir
	}
	// Absent means the default (true), not false.
	if !meta.IsDefined("navigator", "record_failed_opens") {
		cfg.Navigator.RecordFailedOpens = true
	}

	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
