package formfill

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation failures. Errors returned by Generate and
// Render match one of them with errors.Is.
var (
	ErrLoad           = errors.New("formfill: base document could not be loaded")
	ErrInvalidRequest = errors.New("formfill: invalid request")
	ErrValidation     = errors.New("formfill: payload failed validation")
)

// OpError records the stage of a generation that failed. It wraps the
// underlying cause and a sentinel error.
type OpError struct {
	Op   string // stage, e.g. "load", "open", "validate", "write"
	Kind error  // ErrLoad, ErrInvalidRequest or ErrValidation; nil for output failures
	Err  error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("formfill.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("formfill.%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

func newOpError(op string, kind, err error) *OpError {
	return &OpError{Op: op, Kind: kind, Err: err}
}
