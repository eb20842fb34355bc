//go:build !windows

package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Apply replaces the current binary with newBinaryPath and restarts the process.
// On unix, the running binary can be replaced while the process is active.
func Apply(newBinaryPath string) error {
	currentExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("updater: resolve executable: %w", err)
	}
	realPath, err := filepath.EvalSymlinks(currentExe)
	if err != nil {
		return fmt.Errorf("updater: resolve symlinks: %w", err)
	}

	if err := healthCheck(newBinaryPath); err != nil {
		return err
	}

	// Backup current binary
	backupPath := realPath + ".old"
	if err := copyFile(realPath, backupPath); err != nil {
		return fmt.Errorf("updater: backup current binary: %w", err)
	}

	// Replace current binary with new one
	if err := copyFile(newBinaryPath, realPath); err != nil {
		// Rollback
		_ = copyFile(backupPath, realPath)
		return fmt.Errorf("updater: replace binary: %w", err)
	}

	os.Remove(newBinaryPath)

	// Release the instance lock and anything else a successor cannot inherit
	runPreApply()

	// Exec into the new binary, replacing this process in-place
	return syscall.Exec(realPath, os.Args, os.Environ())
}
