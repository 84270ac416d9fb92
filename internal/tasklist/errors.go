package tasklist

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Editor operations.
var (
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrMissingScope   = errors.New("missing parent id")
	ErrInvalidInput   = errors.New("invalid input")
)

// Problem is a single structural violation found by Validate.
type Problem struct {
	Path    string // dotted path, e.g. "epics.0.tasks.1.content"
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// ValidationError carries every problem found in a rejected document.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid document: " + e.Problems[0].String()
	}
	return fmt.Sprintf("invalid document (%d problems):\n  %s",
		len(e.Problems), strings.Join(e.Strings(), "\n  "))
}

// Strings returns each problem formatted as "<path>: <reason>".
func (e *ValidationError) Strings() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.String()
	}
	return out
}

func notFound(kind Kind, id string, scope string) error {
	if scope == "" {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("%s %q in %s: %w", kind, id, scope, ErrNotFound)
}

func parentNotFound(kind Kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrParentNotFound, kind, id)
}
