package shared

import (
	"fmt"

	"github.com/gofrs/flock"
)

// RunLock guards the single live transfer run across processes.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock creates a lock backed by the file at path.
func NewRunLock(path string) *RunLock {
	return &RunLock{path: path, lock: flock.New(path)}
}

// Acquire takes the lock without blocking. It fails with [ErrTransferRunning] when another process holds it.
func (r *RunLock) Acquire() error {
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", r.path, err)
	}
	if !ok {
		return fmt.Errorf("%w: lock held at %s", ErrTransferRunning, r.path)
	}
	return nil
}

// Release unlocks the file. Releasing an unheld lock is a no-op.
func (r *RunLock) Release() error {
	if !r.lock.Locked() {
		return nil
	}
	return r.lock.Unlock()
}

// Path returns the lock file path.
func (r *RunLock) Path() string {
	return r.path
}
