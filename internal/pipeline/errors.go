package pipeline

import "fmt"

// DataError reports a raw-decode failure with enough context to diagnose an
// institution's format drift: the offending path, the parse configuration
// attempted, and the underlying cause.
type DataError struct {
	Path   string
	Format string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("failed to decode %s: format=%s: %v", e.Path, e.Format, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }
