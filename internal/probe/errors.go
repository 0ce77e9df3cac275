package probe

import (
	"errors"
	"fmt"
)

// ErrResourceNotFound is returned by Emit when the probe captured no usable
// path.
var ErrResourceNotFound = errors.New("resource not found")

// AbortSignal is the planned stop of a probe run. The Recorder cancels the
// run context with it as the cause and returns it from the entry point.
type AbortSignal struct {
	Dependency string
	Entry      string
	Path       string
}

// Error implements the error interface.
func (s *AbortSignal) Error() string {
	return fmt.Sprintf("%s::%s(%q) called, run stopped", s.Dependency, s.Entry, s.Path)
}

// UnrelatedImportFailure wraps any error, other than an AbortSignal, that
// stopped the target before or instead of calling the entry point.
type UnrelatedImportFailure struct {
	Target string
	Err    error
}

// Error implements the error interface.
func (f *UnrelatedImportFailure) Error() string {
	return fmt.Sprintf("loading %q failed: %v", f.Target, f.Err)
}

// Unwrap returns the underlying error.
func (f *UnrelatedImportFailure) Unwrap() error {
	return f.Err
}
