package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
)

// ErrFrozen matches (via errors.Is) a StateError raised by a content edit
// on a record that no longer accepts edits.
var ErrFrozen = errors.New("record is frozen")

// userMessager is implemented by every domain error. Its message is safe
// to post verbatim to a thread.
type userMessager interface {
	UserMessage() string
}

// ValidationError reports a command that is structurally incomplete,
// such as a fill without a section or without content.
type ValidationError struct {
	Command command.Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: missing %s", e.Command, e.Field)
}

// UserMessage implements the reply text.
func (e *ValidationError) UserMessage() string {
	return e.Message
}

// StateError reports a command that is not legal from the record's
// current status.
type StateError struct {
	RecordID int64
	Status   adr.Status
	Command  command.Kind
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: command %s not allowed in state %s", adr.Key(e.RecordID), e.Command, e.Status)
}

// Frozen reports whether the rejected command was a content edit.
func (e *StateError) Frozen() bool {
	return (e.Command == command.KindFill || e.Command == command.KindAppend) && !Editable(e.Status)
}

// Is lets errors.Is(err, ErrFrozen) match frozen edits.
func (e *StateError) Is(target error) bool {
	return target == ErrFrozen && e.Frozen()
}

// UserMessage implements the reply text.
func (e *StateError) UserMessage() string {
	if e.Frozen() {
		return fmt.Sprintf("%s is frozen (%s): `%s` is not allowed.", adr.Key(e.RecordID), e.Status, e.Command)
	}
	if Terminal(e.Status) {
		return fmt.Sprintf("%s is %s (final): `%s` is not allowed.", adr.Key(e.RecordID), e.Status, e.Command)
	}
	return fmt.Sprintf("%s is %s: `%s` is not allowed.", adr.Key(e.RecordID), e.Status, e.Command)
}

// IncompleteError reports a propose on a record with blank required
// sections. Missing follows adr.RequiredSections order.
type IncompleteError struct {
	RecordID int64
	Missing  []adr.Section
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing required sections: %s", adr.Key(e.RecordID), joinSections(e.Missing))
}

// UserMessage implements the reply text.
func (e *IncompleteError) UserMessage() string {
	return fmt.Sprintf("%s cannot be proposed, missing sections: %s.", adr.Key(e.RecordID), joinSections(e.Missing))
}

// PreconditionError reports a supersession whose records do not satisfy
// the linking rules. RecordID is the record being superseded.
type PreconditionError struct {
	RecordID int64
	Status   adr.Status
	Reason   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: supersede precondition failed: %s", adr.Key(e.RecordID), e.Reason)
}

// UserMessage implements the reply text.
func (e *PreconditionError) UserMessage() string {
	return fmt.Sprintf("Cannot supersede %s: %s.", adr.Key(e.RecordID), e.Reason)
}

// UnrecognizedError reports an action word outside the command grammar.
type UnrecognizedError struct {
	Action string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized command %q", e.Action)
}

// UserMessage implements the reply text.
func (e *UnrecognizedError) UserMessage() string {
	names := make([]string, len(command.Kinds))
	for i, k := range command.Kinds {
		names[i] = k.String()
	}
	return fmt.Sprintf("Unknown command `%s`. Available: %s.", e.Action, strings.Join(names, ", "))
}

// UserMessage returns the thread reply for err. Domain errors (including
// command.ParseError) provide their own text; anything else gets a generic
// line so internals never leak into a thread.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "Internal error while processing the command; see the workflow logs."
}

// IsDomainError reports whether err is an expected outcome of a bad
// command rather than an infrastructure failure.
func IsDomainError(err error) bool {
	var um userMessager
	return errors.As(err, &um)
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateError returns true if err is or wraps a *StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsIncompleteError returns true if err is or wraps an *IncompleteError.
func IsIncompleteError(err error) bool {
	var ie *IncompleteError
	return errors.As(err, &ie)
}

// IsPreconditionError returns true if err is or wraps a *PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func joinSections(sections []adr.Section) string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
