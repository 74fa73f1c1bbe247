// Package runlock keeps two readiness runs on one host from racing on
// scratch files and the history database.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
)

// FileName is the lock file created inside the state directory.
const FileName = "run.lock"

// Lock is a cross-process exclusive lock backed by gofrs/flock.
// Works on Unix and Windows.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns an unlocked lock at <dir>/run.lock.
func New(dir string) *Lock {
	path := filepath.Join(dir, FileName)
	return &Lock{
		path:  path,
		flock: flock.New(path),
	}
}

// Acquire takes the lock without blocking. When another process holds
// it, Acquire returns an ERR_203_RUN_LOCKED error.
func (l *Lock) Acquire() error {
	ok, err := l.TryLock()
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeRunLocked, "cannot acquire run lock", err).
			WithDetail("path", l.path)
	}
	if !ok {
		return rcerrors.New(rcerrors.ErrCodeRunLocked, "another readyctl run is in progress", nil).
			WithDetail("path", l.path).
			WithSuggestion("wait for it to finish, or remove " + l.path + " if no run is active")
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Release unlocks. Safe to call more than once or on an unlocked Lock.
func (l *Lock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// IsLocked reports whether this Lock currently holds the lock.
func (l *Lock) IsLocked() bool {
	return l.locked
}
