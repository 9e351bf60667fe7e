package experiment

import (
	"errors"
	"fmt"
)

// ErrFoldDegenerate marks a fold whose split cannot be trained or tested.
var ErrFoldDegenerate = errors.New("degenerate fold")

// ErrRuleMismatch marks a label rule the corpus cannot support.
var ErrRuleMismatch = errors.New("label rule does not fit corpus")

// FoldDegenerateError aborts a run. Skipping the fold instead would bias the
// aggregate accuracy.
type FoldDegenerateError struct {
	Device string
	Reason string
}

// Error implements the error interface.
func (e *FoldDegenerateError) Error() string {
	return fmt.Sprintf("fold %s: %s", e.Device, e.Reason)
}

// Is matches ErrFoldDegenerate.
func (e *FoldDegenerateError) Is(target error) bool {
	return target == ErrFoldDegenerate
}

// IsFoldDegenerate checks if an error is or wraps ErrFoldDegenerate.
func IsFoldDegenerate(err error) bool {
	return errors.Is(err, ErrFoldDegenerate)
}
