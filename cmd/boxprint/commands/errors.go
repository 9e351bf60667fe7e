package commands

import (
	"errors"

	"github.com/boxprint/boxprint/cmd/boxprint/internal/bind"
	"github.com/boxprint/boxprint/cmd/boxprint/internal/format"
	"github.com/boxprint/boxprint/pkg/artifact"
	"github.com/boxprint/boxprint/pkg/classifier"
	"github.com/boxprint/boxprint/pkg/corpus"
	"github.com/boxprint/boxprint/pkg/experiment"
	"github.com/boxprint/boxprint/pkg/taxonomy"
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with a CLI error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// ErrorCode resolves an error to its CLI error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, bind.ErrInvalidOption),
		errors.Is(err, experiment.ErrRuleMismatch):
		return format.CodeInvalidArgument
	case errors.Is(err, corpus.ErrStructuralInput):
		return format.CodeStructuralInput
	case errors.Is(err, taxonomy.ErrUnknownDevice):
		return format.CodeUnknownDevice
	case errors.Is(err, experiment.ErrFoldDegenerate):
		return format.CodeFoldDegenerate
	case errors.Is(err, classifier.ErrUnknownBackend):
		return format.CodeUnknownBackend
	case errors.Is(err, artifact.ErrKindMismatch),
		errors.Is(err, artifact.ErrIncompatibleSchema):
		return format.CodeIncompatibleArtifact
	default:
		return format.CodeRunFailed
	}
}

// ExitCode maps errors to CLI exit codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch ErrorCode(err) {
	case format.CodeInvalidArgument, format.CodeInvalidConfig, format.CodeUnknownBackend:
		return 2
	case format.CodeStructuralInput, format.CodeUnknownDevice:
		return 3
	case format.CodeFoldDegenerate:
		return 4
	case format.CodeIncompatibleArtifact:
		return 5
	default:
		return 1
	}
}
