package todotxt

import (
	"fmt"
	"strings"
)

// LineError is a line that could not be turned into a task.
type LineError struct {
	File string // set when the line came from ReadFile or ReadGlob
	Line int    // 1-based position in the batch, 0 for a single line
	Text string
	Err  error
}

func (e *LineError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d %q: %v", e.File, e.Line, e.Text, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("line %q: %v", e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// BatchError collects the lines ParseLines skipped.
type BatchError struct {
	Errors []*LineError
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d line(s) failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is and errors.As see every line error.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}
