// Package lock provides file-based locking for manifest edits.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// ForFile creates a lock guarding edits to the file at target.
// The lock file lives in .edgedev/locks next to target.
func ForFile(target string) *Lock {
	lockDir := filepath.Join(filepath.Dir(target), ".edgedev", "locks")
	return &Lock{
		path: filepath.Join(lockDir, filepath.Base(target)+".lock"),
	}
}

// Acquire attempts to acquire the lock without blocking.
// Returns an error matching ErrLocked if another process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, ErrLocked) {
			return fmt.Errorf("%s: %w", l.target(), ErrLocked)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// Write PID to lock file for debugging
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock. The lock file stays in place: removing it
// would let a waiter lock an unlinked inode while a newcomer locks a fresh
// file at the same path.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := unlockFile(l.file); err != nil {
		l.file.Close()
		l.file = nil
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	l.file = nil

	return nil
}

func (l *Lock) target() string {
	return strings.TrimSuffix(filepath.Base(l.path), ".lock")
}

// WithFileLock executes fn while holding the lock for target.
// The lock is released when fn returns.
func WithFileLock(target string, fn func() error) error {
	lock := ForFile(target)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
