// Package defaults resolves the platform data directory for Vibing.
//
// Platform paths:
//
//	macOS:   ~/Library/Application Support/Vibing/
//	Windows: %AppData%\Vibing\
//	Linux:   ~/.config/vibing/
//
// Override with VIBING_DATA_DIR. Tests point the store at an isolated file
// with VIBING_TEST_DB so they never touch the production database.
package defaults

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DBFile is the name of the embedded database file inside the data directory.
const DBFile = "vibing.db"

// ConfigFile is the name of the YAML configuration file.
const ConfigFile = "config.yaml"

// DataDir returns the platform-appropriate data directory.
// Set VIBING_DATA_DIR to override.
func DataDir() (string, error) {
	if dir := os.Getenv("VIBING_DATA_DIR"); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	// macOS/Windows: title case per platform convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "vibing"), nil
	}
	return filepath.Join(configDir, "Vibing"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// DBPath returns the path of the embedded database file.
// VIBING_TEST_DB overrides it entirely so automated tests get isolated state.
func DBPath() (string, error) {
	if p := os.Getenv("VIBING_TEST_DB"); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFile), nil
}

// ConfigPath returns the path of the YAML configuration file.
func ConfigPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFile), nil
}
