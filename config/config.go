// Package config loads bareclad's startup configuration file (spec §6):
// which database file to use (or none, for an in-memory database), whether
// to wipe it on startup, and an optional Traqula script to run before the
// engine starts serving.
//
// Config loading is cold-path, so it uses the standard library
// encoding/json rather than goccy/go-json, which the rest of bareclad
// reserves for the hot-path Value JSON variant and persisted text.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Roenbaeck/bareclad/bcerr"
)

// Config is the decoded shape of bareclad.json.
type Config struct {
	// DatabaseFileAndPath is the SQLite file path used in File mode. Load
	// rejects an empty path when EnablePersistence is true.
	DatabaseFileAndPath string `json:"database_file_and_path"`

	// EnablePersistence selects File mode over InMemory. Defaults to false
	// (in-memory) when the key is absent.
	EnablePersistence bool `json:"enable_persistence"`

	// RecreateDatabaseOnStartup deletes DatabaseFileAndPath before opening
	// it. Only meaningful when EnablePersistence is true.
	RecreateDatabaseOnStartup bool `json:"recreate_database_on_startup"`

	// TraqulaFileToRunOnStartup, if set, is a path to a Traqula script run
	// once before the engine accepts further queries.
	TraqulaFileToRunOnStartup string `json:"traqula_file_to_run_on_startup"`
}

// Load reads and decodes the bareclad.json file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", bcerr.ErrPersistenceIO, path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", bcerr.ErrParseError, path, err)
	}
	if cfg.RecreateDatabaseOnStartup && !cfg.EnablePersistence {
		return nil, fmt.Errorf("%w: recreate_database_on_startup requires enable_persistence", bcerr.ErrParseError)
	}
	if cfg.EnablePersistence && cfg.DatabaseFileAndPath == "" {
		return nil, fmt.Errorf("%w: enable_persistence requires database_file_and_path", bcerr.ErrParseError)
	}
	return &cfg, nil
}

// PrepareDatabaseFile deletes DatabaseFileAndPath when
// RecreateDatabaseOnStartup is set, so the caller's persist.Open starts from
// a clean file. A no-op in InMemory mode.
func (c *Config) PrepareDatabaseFile() error {
	if !c.EnablePersistence || !c.RecreateDatabaseOnStartup {
		return nil
	}
	if err := os.Remove(c.DatabaseFileAndPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", bcerr.ErrPersistenceIO, c.DatabaseFileAndPath, err)
	}
	return nil
}
