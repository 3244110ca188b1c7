package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/adrgov/internal/adr"
)

// timeLayout keeps sub-second precision and sorts lexically.
const timeLayout = time.RFC3339Nano

// marshalSections encodes the section map as a JSON object.
// encoding/json sorts map keys, so equal maps produce equal bytes.
func marshalSections(sections map[adr.Section]string) (string, error) {
	b, err := json.Marshal(sections)
	if err != nil {
		return "", fmt.Errorf("marshal sections: %w", err)
	}
	return string(b), nil
}

func unmarshalSections(data string) (map[adr.Section]string, error) {
	sections := map[adr.Section]string{}
	if err := json.Unmarshal([]byte(data), &sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	return sections, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
