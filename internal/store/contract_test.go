package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adrgov/internal/adr"
)

func TestLoad_NotFound(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		_, err := s.Load(context.Background(), 7)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))

		var se *StoreError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "load", se.Op)
		assert.Equal(t, int64(7), se.ID)
		assert.Equal(t, "store: load ADR-7: not found", err.Error())
	})
}

func TestSave_RoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		old := int64(12)

		rec := createTestRecord(42)
		rec.ThreadID = 43
		rec.Sections[adr.SectionContext] = "We need a queue.\nLine two."
		rec.Status = adr.StatusApproved
		rec.ApprovedBy = "bob"
		rec.Supersedes = &old

		require.NoError(t, s.Save(ctx, &rec))
		assert.Equal(t, int64(1), rec.Version)

		got, err := s.Load(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})
}

func TestSave_PreservesSubSecondTimestamps(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()
		ts := testTime.Add(123456789 * time.Nanosecond)

		rec := adr.New(5, "t", "alice", ts)
		rec.AppendHistory(adr.HistoryEntry{Timestamp: ts, Actor: "alice", Action: "create"})
		require.NoError(t, s.Save(ctx, &rec))

		got, err := s.Load(ctx, 5)
		require.NoError(t, err)
		assert.True(t, ts.Equal(got.CreatedAt))
		assert.True(t, ts.Equal(got.History[0].Timestamp))
	})
}

func TestSave_InsertExistingConflicts(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		first := createTestRecord(42)
		require.NoError(t, s.Save(ctx, &first))

		dup := createTestRecord(42)
		err := s.Save(ctx, &dup)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Equal(t, int64(0), dup.Version)
	})
}

func TestSave_StaleVersionConflicts(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		rec := createTestRecord(42)
		require.NoError(t, s.Save(ctx, &rec))

		a, err := s.Load(ctx, 42)
		require.NoError(t, err)
		b, err := s.Load(ctx, 42)
		require.NoError(t, err)

		a.Sections[adr.SectionContext] = "from a"
		require.NoError(t, s.Save(ctx, &a))
		assert.Equal(t, int64(2), a.Version)

		b.Sections[adr.SectionContext] = "from b"
		err = s.Save(ctx, &b)
		require.Error(t, err)
		assert.True(t, IsConflict(err))

		got, err := s.Load(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, "from a", got.Sections[adr.SectionContext])
	})
}

func TestSave_UnknownRecordWithVersionConflicts(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		rec := createTestRecord(42)
		rec.Version = 3
		err := s.Save(context.Background(), &rec)
		assert.True(t, IsConflict(err))
	})
}

func TestSave_AppendsHistory(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		rec := createTestRecord(42)
		require.NoError(t, s.Save(ctx, &rec))

		rec.AppendHistory(adr.HistoryEntry{Timestamp: testTime.Add(time.Second), Actor: "bob", Action: "fill context", RunID: "run-2"})
		rec.AppendHistory(adr.HistoryEntry{Timestamp: testTime.Add(2 * time.Second), Actor: "bob", Action: "propose", RunID: "run-2"})
		require.NoError(t, s.Save(ctx, &rec))

		got, err := s.Load(ctx, 42)
		require.NoError(t, err)
		require.Len(t, got.History, 3)
		assert.Equal(t, "create", got.History[0].Action)
		assert.Equal(t, "fill context", got.History[1].Action)
		assert.Equal(t, "propose", got.History[2].Action)
		assert.Equal(t, "run-2", got.History[2].RunID)
	})
}

func TestSave_RejectsHistoryTruncation(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		rec := createTestRecord(42)
		require.NoError(t, s.Save(ctx, &rec))

		rec.History = nil
		err := s.Save(ctx, &rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrHistoryRewrite))
	})
}

func TestSave_RejectsInvalidRecord(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		rec := createTestRecord(42)
		delete(rec.Sections, adr.SectionOptions)

		err := s.Save(context.Background(), &rec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADR-42")

		_, err = s.Load(context.Background(), 42)
		assert.True(t, IsNotFound(err))
	})
}

func TestSaveAll_IsAtomic(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		oldRec := createTestRecord(12)
		newRec := createTestRecord(42)
		require.NoError(t, s.SaveAll(ctx, &oldRec, &newRec))

		// A stale second record must keep the first one from being written.
		staleNew := newRec.Clone()
		newRec.Title = "bumped"
		require.NoError(t, s.Save(ctx, &newRec))

		oldRec.Status = adr.StatusSuperseded
		staleNew.Title = "stale"
		err := s.SaveAll(ctx, &oldRec, &staleNew)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Equal(t, int64(1), oldRec.Version)

		got, err := s.Load(ctx, 12)
		require.NoError(t, err)
		assert.Equal(t, adr.StatusInit, got.Status)
		assert.Equal(t, int64(1), got.Version)
	})
}

func TestSaveAll_AdvancesEveryVersion(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		a, b := createTestRecord(1), createTestRecord(2)
		require.NoError(t, s.SaveAll(ctx, &a, &b))
		require.NoError(t, s.SaveAll(ctx, &a, &b))
		assert.Equal(t, int64(2), a.Version)
		assert.Equal(t, int64(2), b.Version)
	})
}

func TestFindByThread(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		a := createTestRecord(42)
		a.ThreadID = 43
		b := createTestRecord(50)
		b.ThreadID = 43
		c := createTestRecord(60)
		require.NoError(t, s.SaveAll(ctx, &b, &a, &c))

		got, err := s.FindByThread(ctx, 43)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)

		_, err = s.FindByThread(ctx, 99)
		assert.True(t, IsNotFound(err))

		// Unbound records have thread 0, which never matches.
		_, err = s.FindByThread(ctx, 0)
		assert.True(t, IsNotFound(err))
	})
}

func TestList_OrdersByID(t *testing.T) {
	backends(t, func(t *testing.T, s recordStore) {
		ctx := context.Background()

		empty, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, id := range []int64{30, 10, 20} {
			rec := createTestRecord(id)
			require.NoError(t, s.Save(ctx, &rec))
		}

		recs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, []int64{10, 20, 30}, []int64{recs[0].ID, recs[1].ID, recs[2].ID})
		assert.Len(t, recs[0].History, 1)
	})
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	rec := createTestRecord(42)
	require.NoError(t, m.Save(ctx, &rec))

	rec.Sections[adr.SectionContext] = "mutated after save"
	got, err := m.Load(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, got.Sections[adr.SectionContext])

	got.Sections[adr.SectionContext] = "mutated after load"
	again, err := m.Load(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, again.Sections[adr.SectionContext])
}
