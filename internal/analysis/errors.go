package analysis

import (
	"fmt"
	"strings"
)

// ParseError means the model response was not well-formed JSON after fence
// stripping. The raw text is kept for diagnostics and must never reach the
// end user.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("analysis response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError means the response parsed but lacks required top-level fields.
type ShapeError struct {
	Missing []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("analysis response is missing required fields: %s", strings.Join(e.Missing, ", "))
}
