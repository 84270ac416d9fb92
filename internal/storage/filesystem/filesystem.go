// Package filesystem implements storage.Store as a single JSON document on
// the local filesystem, normally .tasktree/tasks.json.
//
// Writers take an exclusive flock on "<file>.lock" for the whole
// load-mutate-save cycle; the document itself is replaced atomically via a
// temporary file and rename, with the previous version kept as
// "<file>.bak".
package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"tasktree/internal/fsutil"
	"tasktree/internal/storage"
	"tasktree/internal/tasklist"
)

// DefaultLockTimeout bounds how long Modify waits for another writer.
const DefaultLockTimeout = 10 * time.Second

// FilesystemStorage implements storage.Store using one JSON file.
type FilesystemStorage struct {
	path        string
	lockTimeout time.Duration
	logger      *log.Logger
}

// Option configures a FilesystemStorage instance.
type Option func(*FilesystemStorage)

// WithLockTimeout sets how long Modify waits for the lock.
func WithLockTimeout(d time.Duration) Option {
	return func(fs *FilesystemStorage) {
		fs.lockTimeout = d
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(l *log.Logger) Option {
	return func(fs *FilesystemStorage) {
		if l != nil {
			fs.logger = l
		}
	}
}

// New creates a FilesystemStorage for the document at path.
func New(path string, opts ...Option) *FilesystemStorage {
	fs := &FilesystemStorage{
		path:        path,
		lockTimeout: DefaultLockTimeout,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Path returns the document path.
func (fs *FilesystemStorage) Path() string {
	return fs.path
}

func (fs *FilesystemStorage) lockPath() string {
	return fs.path + ".lock"
}

func (fs *FilesystemStorage) backupPath() string {
	return fs.path + ".bak"
}

// Init creates the parent directory and writes an empty document.
func (fs *FilesystemStorage) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return err
	}
	return fsutil.WithLock(fs.lockPath(), fs.lockTimeout, func() error {
		if _, err := os.Stat(fs.path); err == nil {
			return fmt.Errorf("%s: %w", fs.path, storage.ErrAlreadyInitialized)
		}
		fs.logger.Debug("initializing state file", "path", fs.path)
		return fs.write(tasklist.CreateEmptyState())
	})
}

// Load reads and validates the document.
func (fs *FilesystemStorage) Load(ctx context.Context) (*tasklist.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.read()
}

// Save validates s by round-tripping it through tasklist.Validate and
// replaces the document.
func (fs *FilesystemStorage) Save(ctx context.Context, s *tasklist.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return err
	}
	return fsutil.WithLock(fs.lockPath(), fs.lockTimeout, func() error {
		return fs.write(s)
	})
}

// Modify holds the lock across load, fn and save.
func (fs *FilesystemStorage) Modify(ctx context.Context, fn func(*tasklist.State) (*tasklist.State, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(fs.path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", fs.path, storage.ErrNotInitialized)
	}
	return fsutil.WithLock(fs.lockPath(), fs.lockTimeout, func() error {
		current, err := fs.read()
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fs.write(next)
	})
}

func (fs *FilesystemStorage) read() (*tasklist.State, error) {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", fs.path, storage.ErrNotInitialized)
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	s, err := tasklist.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fs.path, err)
	}
	fs.logger.Debug("loaded state", "path", fs.path, "epics", len(s.Epics), "tasks", len(s.Tasks))
	return s, nil
}

// write encodes s, checks that it would load back, keeps the previous
// document as a backup and atomically replaces it. The caller holds the lock.
func (fs *FilesystemStorage) write(s *tasklist.State) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if _, err := tasklist.Validate(buf.Bytes()); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	if prev, err := os.ReadFile(fs.path); err == nil {
		if err := fsutil.AtomicWrite(fs.backupPath(), prev); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
	}
	if err := fsutil.AtomicWrite(fs.path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	fs.logger.Debug("saved state", "path", fs.path, "epics", len(s.Epics), "tasks", len(s.Tasks))
	return nil
}

// Compile-time check that FilesystemStorage implements storage.Store.
var _ storage.Store = (*FilesystemStorage)(nil)
