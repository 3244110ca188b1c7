package adr

import "strings"

// Section names one entry of a record's section map.
type Section string

const (
	SectionTitle        Section = "title"
	SectionContext      Section = "context"
	SectionDecision     Section = "decision"
	SectionOptions      Section = "options"
	SectionConsequences Section = "consequences"
	SectionStatus       Section = "status"
)

// RequiredSections must all be non-empty before a record can be proposed.
// The order here is the order used in diagnostics.
var RequiredSections = []Section{
	SectionContext,
	SectionDecision,
	SectionOptions,
	SectionConsequences,
}

// AllSections is the complete, fixed key set of every record, in display order.
var AllSections = []Section{
	SectionTitle,
	SectionContext,
	SectionDecision,
	SectionOptions,
	SectionConsequences,
	SectionStatus,
}

// Valid reports whether s is part of the fixed key set.
func (s Section) Valid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}

// Required reports whether s counts towards completeness.
func (s Section) Required() bool {
	for _, req := range RequiredSections {
		if s == req {
			return true
		}
	}
	return false
}

// Derived reports whether s mirrors a record field instead of holding
// free text: title shows Record.Title and status shows Record.Status.
func (s Section) Derived() bool {
	return s == SectionTitle || s == SectionStatus
}

// Heading returns the display heading for s ("Context", "Consequences").
func (s Section) Heading() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
