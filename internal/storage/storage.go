// Package storage defines the interface for persisting the task tree.
//
// A Store holds exactly one tasklist.State document. Every document that
// comes out of Load has passed tasklist.Validate.
package storage

import (
	"context"

	"tasktree/internal/tasklist"
)

// Store persists a single task tree document.
type Store interface {
	// Init creates the backing location and an empty document.
	// Returns ErrAlreadyInitialized if a document already exists.
	Init(ctx context.Context) error

	// Load reads and validates the document.
	// Returns ErrNotInitialized if there is no document yet.
	Load(ctx context.Context) (*tasklist.State, error)

	// Save replaces the document with s.
	Save(ctx context.Context, s *tasklist.State) error

	// Modify loads the document, applies fn and saves the result, holding
	// an exclusive lock throughout so concurrent writers serialize.
	// If fn returns an error nothing is written.
	Modify(ctx context.Context, fn func(*tasklist.State) (*tasklist.State, error)) error

	// Path returns a human-readable location of the document.
	Path() string
}
