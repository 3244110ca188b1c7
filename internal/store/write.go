package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
)

// Save persists rec. See SaveAll.
func (s *Store) Save(ctx context.Context, rec *adr.Record) error {
	return s.SaveAll(ctx, rec)
}

// SaveAll persists every record in one transaction: either all are written
// or none are. On success each record's Version is advanced to the stored
// value. On failure the records are left untouched.
//
// A record with Version 0 is inserted and must not already exist. Any
// other Version must equal the stored one. Only history entries beyond
// the stored count are written.
func (s *Store) SaveAll(ctx context.Context, recs ...*adr.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if err := saveTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "save", Err: fmt.Errorf("commit: %w", err)}
	}

	for _, rec := range recs {
		rec.Version++
	}
	return nil
}

func saveTx(ctx context.Context, tx *sql.Tx, rec *adr.Record) error {
	fail := func(err error) error {
		return &StoreError{Op: "save", ID: rec.ID, Err: err}
	}

	if err := rec.Validate(); err != nil {
		return fail(err)
	}

	sections, err := marshalSections(rec.Sections)
	if err != nil {
		return fail(err)
	}

	var stored int
	if rec.Version == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records
			(id, title, thread_id, status, sections, supersedes, superseded_by,
			 approved_by, created_by, created_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(id) DO NOTHING
		`,
			rec.ID,
			rec.Title,
			rec.ThreadID,
			rec.Status.String(),
			sections,
			nullID(rec.Supersedes),
			nullID(rec.SupersededBy),
			rec.ApprovedBy,
			rec.CreatedBy,
			formatTime(rec.CreatedAt),
		)
		if err != nil {
			return fail(fmt.Errorf("insert record: %w", err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return fail(fmt.Errorf("insert record: %w", err))
		} else if n == 0 {
			return fail(fmt.Errorf("%w: record already exists", ErrConflict))
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE records SET
				title = ?, thread_id = ?, status = ?, sections = ?,
				supersedes = ?, superseded_by = ?, approved_by = ?,
				version = version + 1
			WHERE id = ? AND version = ?
		`,
			rec.Title,
			rec.ThreadID,
			rec.Status.String(),
			sections,
			nullID(rec.Supersedes),
			nullID(rec.SupersededBy),
			rec.ApprovedBy,
			rec.ID,
			rec.Version,
		)
		if err != nil {
			return fail(fmt.Errorf("update record: %w", err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return fail(fmt.Errorf("update record: %w", err))
		} else if n == 0 {
			return fail(fmt.Errorf("%w: expected version %d", ErrConflict, rec.Version))
		}

		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM history WHERE record_id = ?", rec.ID,
		).Scan(&stored); err != nil {
			return fail(fmt.Errorf("count history: %w", err))
		}
	}

	if len(rec.History) < stored {
		return fail(fmt.Errorf("%w: %d stored entries, %d given", ErrHistoryRewrite, stored, len(rec.History)))
	}

	for i := stored; i < len(rec.History); i++ {
		h := rec.History[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO history (record_id, seq, timestamp, actor, action, run_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			i+1,
			formatTime(h.Timestamp),
			h.Actor,
			h.Action,
			h.RunID,
		)
		if err != nil {
			return fail(fmt.Errorf("insert history: %w", err))
		}
	}

	return nil
}
