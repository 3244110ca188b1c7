package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/adrgov/internal/adr"
)

// Memory is an in-process store with the same contract as Store.
// Records are cloned on the way in and out, so callers never share state
// with the store.
type Memory struct {
	mu      sync.Mutex
	records map[int64]adr.Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[int64]adr.Record)}
}

// Load returns a copy of the record with the given id.
func (m *Memory) Load(_ context.Context, id int64) (adr.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return adr.Record{}, &StoreError{Op: "load", ID: id, Err: ErrNotFound}
	}
	return rec.Clone(), nil
}

// FindByThread returns the lowest-id record bound to thread.
func (m *Memory) FindByThread(_ context.Context, thread int64) (adr.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if thread != 0 {
		for _, id := range m.sortedIDs() {
			if rec := m.records[id]; rec.ThreadID == thread {
				return rec.Clone(), nil
			}
		}
	}
	return adr.Record{}, &StoreError{Op: "find", ID: thread, Err: ErrNotFound}
}

// List returns copies of every record ordered by id.
func (m *Memory) List(_ context.Context) ([]adr.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []adr.Record
	for _, id := range m.sortedIDs() {
		recs = append(recs, m.records[id].Clone())
	}
	return recs, nil
}

// Save persists rec. See SaveAll.
func (m *Memory) Save(ctx context.Context, rec *adr.Record) error {
	return m.SaveAll(ctx, rec)
}

// SaveAll checks every record before writing any of them.
func (m *Memory) SaveAll(_ context.Context, recs ...*adr.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int64]bool, len(recs))
	for _, rec := range recs {
		if err := m.check(rec); err != nil {
			return err
		}
		if seen[rec.ID] {
			return &StoreError{Op: "save", ID: rec.ID, Err: fmt.Errorf("%w: record saved twice in one batch", ErrConflict)}
		}
		seen[rec.ID] = true
	}

	for _, rec := range recs {
		rec.Version++
		m.records[rec.ID] = rec.Clone()
	}
	return nil
}

func (m *Memory) check(rec *adr.Record) error {
	fail := func(err error) error {
		return &StoreError{Op: "save", ID: rec.ID, Err: err}
	}

	if err := rec.Validate(); err != nil {
		return fail(err)
	}

	stored, exists := m.records[rec.ID]
	switch {
	case rec.Version == 0 && exists:
		return fail(fmt.Errorf("%w: record already exists", ErrConflict))
	case rec.Version != 0 && !exists:
		return fail(fmt.Errorf("%w: expected version %d", ErrConflict, rec.Version))
	case rec.Version != 0 && stored.Version != rec.Version:
		return fail(fmt.Errorf("%w: expected version %d", ErrConflict, rec.Version))
	}

	if len(rec.History) < len(stored.History) {
		return fail(fmt.Errorf("%w: %d stored entries, %d given", ErrHistoryRewrite, len(stored.History), len(rec.History)))
	}
	return nil
}

func (m *Memory) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
