package storage

import (
	"errors"

	"tasktree/internal/fsutil"
)

var (
	ErrNotInitialized     = errors.New("task tree not initialized")
	ErrAlreadyInitialized = errors.New("task tree already initialized")
	ErrLockTimeout        = fsutil.ErrLockTimeout
)
