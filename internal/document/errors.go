package document

import (
	"errors"
	"fmt"
)

// Load errors.
var (
	// ErrFileNotFound is returned when the data file does not exist or
	// cannot be opened.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotObject is returned when a value that must be a JSON object
	// (the document root or a business record) has another kind.
	ErrNotObject = errors.New("value is not an object")

	// ErrNotArray is returned when the businesses field is present but is
	// not a JSON array.
	ErrNotArray = errors.New("value is not an array")

	// ErrInvalidUTF8 is returned when the data file is not UTF-8 text.
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

	// ErrTooDeep is returned when arrays and objects nest deeper than
	// MaxDepth.
	ErrTooDeep = errors.New("maximum nesting depth exceeded")
)

// SyntaxError describes malformed JSON content.
type SyntaxError struct {
	// Offset is the byte offset where the decoder gave up, or -1 when the
	// decoder did not report one.
	Offset int64

	// Err is the underlying decoder error.
	Err error
}

// Error returns the decoder diagnostic, with the offset when known.
func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (at byte %d)", e.Err.Error(), e.Offset)
}

// Unwrap returns the underlying decoder error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}
