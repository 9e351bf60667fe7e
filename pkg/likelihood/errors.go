package likelihood

import (
	"errors"
	"fmt"
)

// ErrVocabularyEmpty marks a class pair with no symbol over threshold.
var ErrVocabularyEmpty = errors.New("vocabulary empty")

// VocabularyEmptyError is a recoverable warning: the pair is skipped in
// reporting and no selection data is lost.
type VocabularyEmptyError struct {
	Device string
	A, B   Cell
}

// Error implements the error interface.
func (e *VocabularyEmptyError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("empty symbol set for %s vs %s", e.A, e.B)
	}
	return fmt.Sprintf("empty symbol set for %s vs %s (%s)", e.A, e.B, e.Device)
}

// Is matches ErrVocabularyEmpty.
func (e *VocabularyEmptyError) Is(target error) bool {
	return target == ErrVocabularyEmpty
}
