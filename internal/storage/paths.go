// Package storage persists engine preferences, search statistics and
// transposition table snapshots across runs.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "riverfish"

// DefaultDataDir returns the platform data directory for the engine and
// creates it if missing.
//   - macOS: ~/Library/Application Support/riverfish/
//   - Linux: $XDG_DATA_HOME/riverfish/ or ~/.local/share/riverfish/
//   - Windows: %APPDATA%/riverfish/
func DefaultDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// databaseDir returns the BadgerDB directory under dataDir, creating it if
// missing.
func databaseDir(dataDir string) (string, error) {
	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}

// SnapshotPath returns the path of the transposition table snapshot file
// under dataDir.
func SnapshotPath(dataDir string) string {
	return filepath.Join(dataDir, "hash.snapshot.zst")
}
