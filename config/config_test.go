package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Roenbaeck/bareclad/bcerr"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bareclad.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadInMemoryDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.EnablePersistence)
	require.Empty(t, cfg.DatabaseFileAndPath)
}

func TestLoadFileMode(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bareclad.db")
	path := writeConfig(t, dir, `{
		"database_file_and_path": "`+dbPath+`",
		"enable_persistence": true,
		"recreate_database_on_startup": true,
		"traqula_file_to_run_on_startup": "seed.traqula"
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.EnablePersistence)
	require.Equal(t, dbPath, cfg.DatabaseFileAndPath)
	require.True(t, cfg.RecreateDatabaseOnStartup)
	require.Equal(t, "seed.traqula", cfg.TraqulaFileToRunOnStartup)
}

func TestLoadRecreateWithoutPersistenceRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"recreate_database_on_startup": true}`)
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrParseError))
}

func TestLoadPersistenceWithoutPathRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"enable_persistence": true}`)
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrParseError))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
	require.True(t, errors.Is(err, bcerr.ErrPersistenceIO))
}

func TestPrepareDatabaseFileRemovesExisting(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bareclad.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("stale"), 0o644))

	cfg := &Config{DatabaseFileAndPath: dbPath, EnablePersistence: true, RecreateDatabaseOnStartup: true}
	require.NoError(t, cfg.PrepareDatabaseFile())
	_, err := os.Stat(dbPath)
	require.True(t, os.IsNotExist(err))
}

func TestPrepareDatabaseFileNoopWithoutRecreate(t *testing.T) {
	cfg := &Config{EnablePersistence: false}
	require.NoError(t, cfg.PrepareDatabaseFile())
}
