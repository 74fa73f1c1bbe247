package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/readyctl/internal/config"
)

// DefaultLogDir returns the default log directory (<state dir>/logs).
func DefaultLogDir() string {
	return filepath.Join(config.StateDir(), "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "readyctl.log")
}

// FindLogFile returns the log file to point a user at.
// An explicit path wins; otherwise the default path is used if it exists.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("no log file found, run with --debug first (expected at %s)", path)
}

// EnsureLogDir creates the directory holding path if it doesn't exist.
func EnsureLogDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
