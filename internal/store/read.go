package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/adrgov/internal/adr"
)

const recordColumns = `id, title, thread_id, status, sections, supersedes,
	superseded_by, approved_by, created_by, created_at, version`

// Load returns the record with the given id.
func (s *Store) Load(ctx context.Context, id int64) (adr.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return adr.Record{}, &StoreError{Op: "load", ID: id, Err: ErrNotFound}
	}
	if err != nil {
		return adr.Record{}, &StoreError{Op: "load", ID: id, Err: err}
	}

	if rec.History, err = s.readHistory(ctx, id); err != nil {
		return adr.Record{}, &StoreError{Op: "load", ID: id, Err: err}
	}
	return rec, nil
}

// FindByThread returns the record whose discussion lives in thread.
// When several records claim the same thread, the lowest id wins.
func (s *Store) FindByThread(ctx context.Context, thread int64) (adr.Record, error) {
	if thread == 0 {
		return adr.Record{}, &StoreError{Op: "find", Err: ErrNotFound}
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM records WHERE thread_id = ? ORDER BY id ASC LIMIT 1", thread,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return adr.Record{}, &StoreError{Op: "find", ID: thread, Err: ErrNotFound}
	}
	if err != nil {
		return adr.Record{}, &StoreError{Op: "find", ID: thread, Err: err}
	}
	return s.Load(ctx, id)
}

// List returns every record ordered by id. History is populated.
func (s *Store) List(ctx context.Context) ([]adr.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records ORDER BY id ASC")
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var recs []adr.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	// Close before issuing history queries; the pool has a single connection.
	rows.Close()

	for i := range recs {
		if recs[i].History, err = s.readHistory(ctx, recs[i].ID); err != nil {
			return nil, &StoreError{Op: "list", ID: recs[i].ID, Err: err}
		}
	}
	return recs, nil
}

func (s *Store) readHistory(ctx context.Context, id int64) ([]adr.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, actor, action, run_id
		FROM history
		WHERE record_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	history := []adr.HistoryEntry{}
	for rows.Next() {
		var (
			h  adr.HistoryEntry
			ts string
		)
		if err := rows.Scan(&ts, &h.Actor, &h.Action, &h.RunID); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if h.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (adr.Record, error) {
	var (
		rec          adr.Record
		status       string
		sections     string
		supersedes   sql.NullInt64
		supersededBy sql.NullInt64
		createdAt    string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.ThreadID,
		&status,
		&sections,
		&supersedes,
		&supersededBy,
		&rec.ApprovedBy,
		&rec.CreatedBy,
		&createdAt,
		&rec.Version,
	)
	if err != nil {
		return adr.Record{}, err
	}

	if rec.Status, err = adr.ParseStatus(status); err != nil {
		return adr.Record{}, err
	}
	if rec.Sections, err = unmarshalSections(sections); err != nil {
		return adr.Record{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return adr.Record{}, err
	}
	rec.Supersedes = idPtr(supersedes)
	rec.SupersededBy = idPtr(supersededBy)
	return rec, nil
}
