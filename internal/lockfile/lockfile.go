// Package lockfile serializes mutating operations on the tvm home directory
// across processes. Acquisition is atomic via O_CREATE|O_EXCL, and locks left
// behind by crashed processes go stale after a threshold.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// FileName is the lock file name inside the home directory.
	FileName = "tvm.lock"
	// StaleThreshold is the maximum lock age before it is considered
	// abandoned and reclaimed.
	StaleThreshold = 10 * time.Minute
)

// ErrLocked reports that another tvm process holds the lock.
var ErrLocked = errors.New("another tvm operation is in progress")

// Lock is a held home-directory lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the exclusive lock for a home directory, reclaiming a stale
// lock once.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, FileName)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if !isStale(lockPath) {
			return nil, ErrLocked
		}
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err != nil {
			return nil, ErrLocked
		}
	}

	meta := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(meta); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock metadata: %w", err)
	}

	return &Lock{path: lockPath, file: file}, nil
}

// Release removes the lock. Idempotent.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

func isStale(lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > StaleThreshold
}
