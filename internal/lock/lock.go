// Package lock provides file-based locking for keylimegen operations.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("operation already running")

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a new lock for the given operation in the project directory.
func New(projectDir, operation string) *Lock {
	lockDir := filepath.Join(projectDir, ".keylimegen", "locks")
	return &Lock{
		path: filepath.Join(lockDir, operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire attempts to acquire the lock without blocking.
// Returns ErrLocked if the lock is already held by another process.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := tryLock(f); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, ErrLocked) {
			return fmt.Errorf("another %s %w (lock file %s)", l.operation(), ErrLocked, l.Path())
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for debugging
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := unlock(l.file); err != nil {
		l.file.Close()
		l.file = nil
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil

	return nil
}

func (l *Lock) operation() string {
	return strings.TrimSuffix(filepath.Base(l.path), ".lock")
}

// WithLock executes a function while holding the lock.
// The lock is automatically released when the function returns.
func WithLock(projectDir, operation string, fn func() error) error {
	lock := New(projectDir, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
