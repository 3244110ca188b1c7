// Package adr defines the Architecture Decision Record data model.
//
// A Record is created once per originating issue and is never deleted.
// Its section set is fixed at creation: every key in AllSections is
// present from the start and only values change afterwards. Status is a
// closed enumeration; transitions between statuses are decided by the
// engine package, never by callers mutating Status directly.
//
// The section validator (IsComplete, Missing) lives here because it only
// reads the record and has no lifecycle knowledge.
package adr
