package bot

import (
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
)

// MissingRecordError is returned when a command names a record that does
// not exist, or arrives on a thread no record is bound to.
type MissingRecordError struct {
	ID     int64 // 0 when looked up by thread
	Thread int64
}

func (e *MissingRecordError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("record %s not found", adr.Key(e.ID))
	}
	return fmt.Sprintf("no record bound to thread %d", e.Thread)
}

// UserMessage implements the reply text.
func (e *MissingRecordError) UserMessage() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s does not exist.", adr.Key(e.ID))
	}
	return "No ADR is attached to this thread."
}
