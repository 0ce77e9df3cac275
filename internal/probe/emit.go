package probe

import (
	"fmt"
	"io"
	"strings"
)

// Basename returns the text after the last '/' or '\' in path.
func Basename(path string) string {
	return path[strings.LastIndexAny(path, `/\`)+1:]
}

// Emit writes the basename of the captured path to w, verbatim and without
// a trailing newline. When nothing was captured, or the captured path ends
// in a separator, it writes nothing and returns ErrResourceNotFound.
func Emit(w io.Writer, res *Result) error {
	if res == nil || !res.Captured {
		return ErrResourceNotFound
	}
	name := Basename(res.Path)
	if name == "" {
		return fmt.Errorf("%w: captured path %q has no final segment", ErrResourceNotFound, res.Path)
	}
	if _, err := io.WriteString(w, name); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
