package engine

import (
	"errors"
	"fmt"
)

// ErrCancelled is the Result error for runs stopped by context
// cancellation before all phases finished.
var ErrCancelled = errors.New("backup cancelled")

// ValidationError reports a precondition failure that prevents the run
// from starting: missing source, empty destination, bad configuration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// SizeMismatchError reports a destination whose length differs from the
// source right after a copy.
type SizeMismatchError struct {
	Path    string
	SrcSize int64
	DstSize int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch for %s: source=%d destination=%d", e.Path, e.SrcSize, e.DstSize)
}
