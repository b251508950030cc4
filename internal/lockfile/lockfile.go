package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"photosort/internal/faults"
)

// Lock is a held advisory lock. Release it when the mutating operation ends.
type Lock struct {
	flock *flock.Flock
}

// Acquire takes the lock at path without blocking. When another process
// already holds it the error wraps faults.ErrConflict.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrConflict, "lockfile", "acquire",
			fmt.Sprintf("another photosort process holds %s", path), nil)
	}
	return &Lock{flock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.flock.Path()
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
