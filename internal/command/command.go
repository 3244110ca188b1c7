package command

import (
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
)

// Command is one parsed governance command.
//
// Section is empty when the command takes no section or none was given;
// for show, an empty section means "all". OldID and NewID are only set
// for supersede. RunID is not produced by the parser; the event shell
// stamps it so history entries can be traced back to a processing run.
type Command struct {
	Kind    Kind        `json:"kind"`
	Action  string      `json:"action"`
	Section adr.Section `json:"section,omitempty"`
	Content string      `json:"content,omitempty"`
	OldID   int64       `json:"old_id,omitempty"`
	NewID   int64       `json:"new_id,omitempty"`
	Actor   string      `json:"actor"`
	Line    int         `json:"line"`
	RunID   string      `json:"-"`
}

// String renders the command the way it is recorded in history,
// e.g. "fill context" or "supersede 12 42".
func (c Command) String() string {
	switch c.Kind {
	case KindFill, KindAppend:
		if c.Section != "" {
			return fmt.Sprintf("%s %s", c.Kind, c.Section)
		}
	case KindShow:
		if c.Section != "" {
			return fmt.Sprintf("show %s", c.Section)
		}
	case KindSupersede:
		if c.OldID != 0 || c.NewID != 0 {
			return fmt.Sprintf("supersede %d %d", c.OldID, c.NewID)
		}
	case KindUnrecognized:
		return c.Action
	}
	return c.Kind.String()
}
