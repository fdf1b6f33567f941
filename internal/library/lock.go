package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process holds the library lock.
var ErrLocked = errors.New("library is locked by another process")

// Lock serializes write access to a library database across processes.
// Imports and cluster rebuilds take the lock; read paths do not.
type Lock struct {
	fl *flock.Flock
}

// NewLock creates a lock alongside the database file.
func NewLock(dbPath string) *Lock {
	return &Lock{fl: flock.New(dbPath + ".lock")}
}

// Acquire takes the lock, failing immediately when it is already held.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return fmt.Errorf("ensure lock dir: %w", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release library lock: %w", err)
	}
	return nil
}
