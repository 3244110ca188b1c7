package adr

import (
	"fmt"
	"time"
)

// HistoryEntry is one line of a record's audit trail.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	RunID     string    `json:"run_id,omitempty"` // processing run that appended the entry
}

// Record is a single Architecture Decision Record.
//
// ID is the number of the originating issue and never changes. ThreadID is
// the discussion thread that carries commands and replies (0 when unknown).
// Version is owned by the document store and used for optimistic
// concurrency; callers must not modify it.
type Record struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	ThreadID     int64              `json:"thread_id,omitempty"`
	Sections     map[Section]string `json:"sections"`
	Status       Status             `json:"status"`
	History      []HistoryEntry     `json:"history"`
	Supersedes   *int64             `json:"supersedes,omitempty"`
	SupersededBy *int64             `json:"superseded_by,omitempty"`
	ApprovedBy   string             `json:"approved_by,omitempty"`
	CreatedBy    string             `json:"created_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	Version      int64              `json:"version"`
}

// New returns a record in StatusInit with every section present and empty.
// It does not append a history entry; the engine does that on creation.
func New(id int64, title, createdBy string, createdAt time.Time) Record {
	sections := make(map[Section]string, len(AllSections))
	for _, s := range AllSections {
		sections[s] = ""
	}
	return Record{
		ID:        id,
		Title:     title,
		Sections:  sections,
		Status:    StatusInit,
		History:   []HistoryEntry{},
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
}

// Key returns the human-facing identifier, e.g. "ADR-42".
func (r Record) Key() string {
	return Key(r.ID)
}

// Key formats a record id the way replies refer to it.
func Key(id int64) string {
	return fmt.Sprintf("ADR-%d", id)
}

// Section returns the content of s, or "" when s is not a known section.
func (r Record) Section(s Section) string {
	return r.Sections[s]
}

// Clone returns a deep copy. Mutating the clone never affects r.
func (r Record) Clone() Record {
	c := r
	c.Sections = make(map[Section]string, len(r.Sections))
	for k, v := range r.Sections {
		c.Sections[k] = v
	}
	c.History = make([]HistoryEntry, len(r.History))
	copy(c.History, r.History)
	if r.Supersedes != nil {
		v := *r.Supersedes
		c.Supersedes = &v
	}
	if r.SupersededBy != nil {
		v := *r.SupersededBy
		c.SupersededBy = &v
	}
	return c
}

// AppendHistory adds an entry to the audit trail.
func (r *Record) AppendHistory(entry HistoryEntry) {
	r.History = append(r.History, entry)
}

// Validate checks the structural invariants a persisted record must hold:
// a positive id, exactly the fixed section key set, a declared status and
// no self-referencing supersession links.
func (r Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", r.ID)
	}
	if len(r.Sections) != len(AllSections) {
		return fmt.Errorf("%s: expected %d sections, got %d", r.Key(), len(AllSections), len(r.Sections))
	}
	for _, s := range AllSections {
		if _, ok := r.Sections[s]; !ok {
			return fmt.Errorf("%s: missing section %q", r.Key(), s)
		}
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%s: invalid status %d", r.Key(), uint8(r.Status))
	}
	if r.Supersedes != nil && *r.Supersedes == r.ID {
		return fmt.Errorf("%s: cannot supersede itself", r.Key())
	}
	if r.SupersededBy != nil && *r.SupersededBy == r.ID {
		return fmt.Errorf("%s: cannot be superseded by itself", r.Key())
	}
	return nil
}
