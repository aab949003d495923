package ingest

import (
	"errors"
	"fmt"
)

// ErrMalformed marks a token sequence a consumer considers structurally
// invalid. Consumers usually produce it through Malformed.
var ErrMalformed = errors.New("malformed line")

// Malformed returns an error wrapping ErrMalformed with a formatted reason.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ResourceError reports that the line source could not produce the text of
// a resource.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("ingest %s: read resource: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// FormatError reports that a consumer rejected an accepted line.
type FormatError struct {
	Resource string
	// Line is the 1-based count of accepted lines, blank and comment lines
	// excluded.
	Line int
	// FileLine is the 1-based physical line number in the resource.
	FileLine int
	// Raw is the trimmed line content.
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ingest %s: line %d (file line %d): %v", e.Resource, e.Line, e.FileLine, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
