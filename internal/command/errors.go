package command

import (
	"errors"
	"fmt"
)

// ErrUnknownSection is wrapped by ParseError when a command names a
// section outside the fixed key set.
var ErrUnknownSection = errors.New("no such section")

// ParseError reports a malformed command line. It is never fatal: the
// shell replies with UserMessage and keeps running.
type ParseError struct {
	Line   int    // 1-based line number within the comment
	Text   string // the offending command line, trimmed
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UserMessage is the reply posted to the thread.
func (e *ParseError) UserMessage() string {
	return fmt.Sprintf("Could not parse command on line %d: %s.", e.Line, e.Reason)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
