package engine

import (
	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
)

// transitions maps (status, command) to the status the command leads to.
// A missing pair is an illegal command. Every adr.Status must have a row,
// even when it only allows show.
//
// fill/append targets of DRAFT are settled afterwards: a record whose
// required sections are all filled becomes READY (see settle).
var transitions = map[adr.Status]map[command.Kind]adr.Status{
	adr.StatusInit: {
		command.KindFill:   adr.StatusDraft,
		command.KindAppend: adr.StatusDraft,
		command.KindShow:   adr.StatusInit,
	},
	adr.StatusDraft: {
		command.KindFill:    adr.StatusDraft,
		command.KindAppend:  adr.StatusDraft,
		command.KindShow:    adr.StatusDraft,
		command.KindPropose: adr.StatusProposed,
	},
	adr.StatusReady: {
		command.KindFill:    adr.StatusDraft,
		command.KindAppend:  adr.StatusDraft,
		command.KindShow:    adr.StatusReady,
		command.KindPropose: adr.StatusProposed,
	},
	adr.StatusProposed: {
		command.KindShow:    adr.StatusProposed,
		command.KindApprove: adr.StatusApproved,
		command.KindRefuse:  adr.StatusRefused,
	},
	adr.StatusApproved: {
		command.KindShow:      adr.StatusApproved,
		command.KindSupersede: adr.StatusSuperseded,
	},
	adr.StatusSuperseded: {
		command.KindShow: adr.StatusSuperseded,
	},
	adr.StatusRefused: {
		command.KindShow: adr.StatusRefused,
	},
}

// Allowed reports whether command k is legal from status s.
// It is a pure function of its arguments.
func Allowed(s adr.Status, k command.Kind) bool {
	_, ok := transitions[s][k]
	return ok
}

// Next returns the status reached by applying k from s. The second result
// is false when the pair is illegal.
func Next(s adr.Status, k command.Kind) (adr.Status, bool) {
	next, ok := transitions[s][k]
	return next, ok
}

// Editable reports whether section content can still change in status s.
func Editable(s adr.Status) bool {
	return Allowed(s, command.KindFill)
}

// Terminal reports whether s accepts no further direct edits or reviews.
// APPROVED is terminal for edits even though it can still be superseded.
func Terminal(s adr.Status) bool {
	switch s {
	case adr.StatusApproved, adr.StatusSuperseded, adr.StatusRefused:
		return true
	case adr.StatusInit, adr.StatusDraft, adr.StatusReady, adr.StatusProposed:
		return false
	}
	return false
}

// check returns a *StateError when k is illegal for rec.
func check(rec adr.Record, k command.Kind) (adr.Status, error) {
	next, ok := Next(rec.Status, k)
	if !ok {
		return rec.Status, &StateError{RecordID: rec.ID, Status: rec.Status, Command: k}
	}
	return next, nil
}

// settle resolves the DRAFT/READY distinction after a content edit.
func settle(next adr.Status, rec adr.Record) adr.Status {
	if next != adr.StatusDraft {
		return next
	}
	if adr.IsComplete(rec) {
		return adr.StatusReady
	}
	return adr.StatusDraft
}
