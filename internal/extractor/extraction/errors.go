package extraction

import (
	"errors"
	"fmt"
)

// ErrResultClosed is returned when appending to a finalised Result.
var ErrResultClosed = errors.New("extraction result is closed")

// InvalidProjectError means the project root is missing or not a directory.
// It is fatal: no file is read and no destination is opened.
type InvalidProjectError struct {
	Root   string
	Reason string
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("invalid project %q: %s", e.Root, e.Reason)
}

// FileReadError is an I/O failure on one source file.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}
