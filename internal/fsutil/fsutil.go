// Package fsutil holds the file primitives shared by the config and state
// stores: advisory flock-based locking and atomic replacement via a temp
// file and rename.
package fsutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when a lock cannot be acquired in time.
var ErrLockTimeout = errors.New("could not acquire lock")

// lockPollInterval is how often a contended lock is retried.
const lockPollInterval = 10 * time.Millisecond

// Lock is a held exclusive flock on a lock file.
type Lock struct {
	file *os.File
}

// Acquire takes an exclusive flock on path, creating the file if needed.
// A timeout of zero blocks until the lock is free.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if timeout <= 0 {
		if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
			f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, err)
		}
		return &Lock{file: f}, nil
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &Lock{file: f}, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, fmt.Errorf("%s after %s: %w", path, timeout, ErrLockTimeout)
		}
		time.Sleep(lockPollInterval)
	}
}

// Release unlocks and closes the lock file. The file itself is left in
// place so concurrent waiters keep locking the same inode.
func (l *Lock) Release() {
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
}

// WithLock runs fn while holding the lock at path.
func WithLock(path string, timeout time.Duration, fn func() error) error {
	lock, err := Acquire(path, timeout)
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// AtomicWrite writes data to path via a uniquely named temporary file in
// the same directory, fsyncs it and renames it over path.
func AtomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return err
	}
	return nil
}
