package github

import (
	"errors"
	"fmt"
)

// ChannelError wraps a failed GitHub API call.
type ChannelError struct {
	Op         string // "post comment", "find thread", "create thread"
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *ChannelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("github: %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// IsChannelError returns true if err is or wraps a ChannelError.
func IsChannelError(err error) bool {
	var ce *ChannelError
	return errors.As(err, &ce)
}

// statusError is a non-2xx response.
type statusError struct {
	message string
}

func (e *statusError) Error() string {
	return e.message
}
