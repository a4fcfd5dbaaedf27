package reporting

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when no record matches the selected material.
	ErrEmptyDataset = errors.New("no records for the selected material")
	// ErrInvalidRequest is returned when a report request fails validation.
	ErrInvalidRequest = errors.New("invalid report request")
)

// Build stages reported by BuildError.
const (
	StageLogo   = "logo"
	StageLayout = "layout"
	StageWrite  = "write"
)

// BuildError reports a failure while assembling or serializing a document.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build report (%s): %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
