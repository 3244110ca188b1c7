package adr

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a record.
//
// The zero value is StatusInit. Persisted form is the upper-case name
// returned by String.
type Status uint8

const (
	StatusInit Status = iota
	StatusDraft
	StatusReady
	StatusProposed
	StatusApproved
	StatusSuperseded
	StatusRefused
)

// Statuses lists every status in declaration order.
var Statuses = []Status{
	StatusInit,
	StatusDraft,
	StatusReady,
	StatusProposed,
	StatusApproved,
	StatusSuperseded,
	StatusRefused,
}

var statusNames = [...]string{
	StatusInit:       "INIT",
	StatusDraft:      "DRAFT",
	StatusReady:      "READY",
	StatusProposed:   "PROPOSED",
	StatusApproved:   "APPROVED",
	StatusSuperseded: "SUPERSEDED",
	StatusRefused:    "REFUSED",
}

// String returns the persisted name of the status.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return int(s) < len(statusNames)
}

// ParseStatus converts a persisted name back into a Status.
// Matching is case-insensitive. "REJECTED" is accepted as a legacy
// spelling of REFUSED.
func ParseStatus(name string) (Status, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "REJECTED" {
		return StatusRefused, nil
	}
	for i, n := range statusNames {
		if n == upper {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
