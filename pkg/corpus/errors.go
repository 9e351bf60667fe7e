package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralInput marks unreadable metadata or a missing tool directory.
	ErrStructuralInput = errors.New("structural input error")

	// ErrMissingDirectory is the cause when an expected platform/tool directory is absent.
	ErrMissingDirectory = errors.New("directory not found")

	// ErrUnknownCell is returned when addressing a platform, class or device
	// the corpus was not created with.
	ErrUnknownCell = errors.New("unknown corpus cell")
)

// StructuralInputError identifies the file or directory that broke corpus
// construction. It is always fatal.
type StructuralInputError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StructuralInputError) Error() string {
	return fmt.Sprintf("structural input %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StructuralInputError) Unwrap() error {
	return e.Err
}

// Is matches ErrStructuralInput.
func (e *StructuralInputError) Is(target error) bool {
	return target == ErrStructuralInput
}

// NewStructuralInputError creates a StructuralInputError.
func NewStructuralInputError(path string, err error) error {
	return &StructuralInputError{Path: path, Err: err}
}

// IsStructuralInput checks if an error is or wraps ErrStructuralInput.
func IsStructuralInput(err error) bool {
	return errors.Is(err, ErrStructuralInput)
}

// ConsistencyWarning reports a whitelisted video missing from disk. It never
// aborts a run.
type ConsistencyWarning struct {
	Platform string `json:"platform,omitempty"`
	Class    string `json:"class,omitempty"`
	VideoID  string `json:"video_id,omitempty"`
	Reason   string `json:"reason"`
}

// String renders the warning for logs.
func (w ConsistencyWarning) String() string {
	switch {
	case w.Platform != "" && w.VideoID != "":
		return fmt.Sprintf("%s/%s: %s %s", w.Platform, w.Class, w.VideoID, w.Reason)
	case w.Platform != "":
		return fmt.Sprintf("%s/%s: %s", w.Platform, w.Class, w.Reason)
	default:
		return fmt.Sprintf("%s: %s", w.VideoID, w.Reason)
	}
}
