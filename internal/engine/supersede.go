package engine

import (
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
)

// Link records that newRec replaces oldRec.
//
// oldRec must be APPROVED; it moves to SUPERSEDED and gets SupersededBy.
// newRec keeps its own status, whatever it is, and gets Supersedes. A
// record supersedes at most one other record, and a superseded record
// cannot replace anything. Nothing is modified when
// Link returns an error.
func Link(oldRec, newRec *adr.Record) error {
	if oldRec.ID == newRec.ID {
		return &PreconditionError{
			RecordID: oldRec.ID,
			Status:   oldRec.Status,
			Reason:   "a record cannot supersede itself",
		}
	}

	next, ok := Next(oldRec.Status, command.KindSupersede)
	if !ok {
		return &PreconditionError{
			RecordID: oldRec.ID,
			Status:   oldRec.Status,
			Reason:   fmt.Sprintf("status is %s, expected %s", oldRec.Status, adr.StatusApproved),
		}
	}

	if newRec.Supersedes != nil {
		return &PreconditionError{
			RecordID: oldRec.ID,
			Status:   oldRec.Status,
			Reason:   fmt.Sprintf("%s already supersedes %s", newRec.Key(), adr.Key(*newRec.Supersedes)),
		}
	}

	if newRec.SupersededBy != nil {
		return &PreconditionError{
			RecordID: oldRec.ID,
			Status:   oldRec.Status,
			Reason:   fmt.Sprintf("%s is itself superseded by %s", newRec.Key(), adr.Key(*newRec.SupersededBy)),
		}
	}

	oldID, newID := oldRec.ID, newRec.ID
	oldRec.Status = next
	oldRec.SupersededBy = &newID
	newRec.Supersedes = &oldID
	return nil
}
