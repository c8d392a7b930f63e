package compositor

import "fmt"

// ValidationError means the timeline state cannot produce any output: no
// track yielded a single renderable segment. The export is aborted before
// the backend is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RenderError means the compositing backend failed on a segment or on the
// final concatenation. Always fatal for the whole export.
type RenderError struct {
	Step string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Step, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
