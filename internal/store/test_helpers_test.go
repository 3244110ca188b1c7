package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/adrgov/internal/adr"
)

var testTime = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// recordStore is the method set both backends implement.
type recordStore interface {
	Load(ctx context.Context, id int64) (adr.Record, error)
	FindByThread(ctx context.Context, thread int64) (adr.Record, error)
	List(ctx context.Context) ([]adr.Record, error)
	Save(ctx context.Context, rec *adr.Record) error
	SaveAll(ctx context.Context, recs ...*adr.Record) error
}

var (
	_ recordStore = (*Store)(nil)
	_ recordStore = (*Memory)(nil)
)

// createTestStore opens a fresh SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends runs fn once per implementation.
func backends(t *testing.T, fn func(t *testing.T, s recordStore)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

// createTestRecord returns a new record with one creation history entry.
func createTestRecord(id int64) adr.Record {
	rec := adr.New(id, "Pick a message queue", "alice", testTime)
	rec.AppendHistory(adr.HistoryEntry{
		Timestamp: testTime,
		Actor:     "alice",
		Action:    "create",
		RunID:     "run-1",
	})
	return rec
}
