package main

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument marks problems with the command line: a missing or empty
	// pattern, or an invalid option value.
	ErrArgument = errors.New("invalid arguments")

	// ErrEncoding marks a path whose name is not valid UTF-8 text.
	ErrEncoding = errors.New("path is not valid UTF-8")
)

// CollectError is a failure to expand a root into files. It is fatal for
// the run, unlike a failure to read one file.
type CollectError struct {
	Root string
	Path string
	Err  error
}

func (e *CollectError) Error() string {
	if e.Path == "" || e.Path == e.Root {
		return fmt.Sprintf("collecting %s: %v", e.Root, e.Err)
	}
	return fmt.Sprintf("collecting %s: %s: %v", e.Root, e.Path, e.Err)
}

func (e *CollectError) Unwrap() error {
	return e.Err
}

func argumentErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}
