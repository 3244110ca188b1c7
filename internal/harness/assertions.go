package harness

import (
	"slices"
	"strings"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/bot"
)

// checkExpect compares one step against its expectations.
func checkExpect(r *Result, ex Exchange, out bot.Outcome, want *Expect) {
	if ex.Err != "" {
		r.AddError("step %d: unexpected error: %s", ex.Step, ex.Err)
		return
	}

	if want.Reply != nil && ex.Reply != *want.Reply {
		r.AddError("step %d: reply = %q, expected %q", ex.Step, ex.Reply, *want.Reply)
	}
	for _, sub := range want.ReplyContains {
		if !strings.Contains(ex.Reply, sub) {
			r.AddError("step %d: reply %q does not contain %q", ex.Step, ex.Reply, sub)
		}
	}
	if want.Ignored != nil && ex.Ignored != *want.Ignored {
		r.AddError("step %d: ignored = %q, expected %q", ex.Step, ex.Ignored, *want.Ignored)
	}
	if want.Thread != nil && out.Thread != *want.Thread {
		r.AddError("step %d: thread = %d, expected %d", ex.Step, out.Thread, *want.Thread)
	}
	if want.Applied != nil && out.Applied != *want.Applied {
		r.AddError("step %d: applied = %d, expected %d", ex.Step, out.Applied, *want.Applied)
	}
	if want.Skipped != nil && out.Skipped != *want.Skipped {
		r.AddError("step %d: skipped = %d, expected %d", ex.Step, out.Skipped, *want.Skipped)
	}
}

// checkFinal compares the stored records against the final assertions.
func checkFinal(r *Result, records []adr.Record, want []RecordAssertion) {
	byID := make(map[int64]adr.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	for _, a := range want {
		key := adr.Key(a.ID)
		rec, ok := byID[a.ID]
		if a.Missing {
			if ok {
				r.AddError("final %s: expected no record, found %s", key, rec.Status)
			}
			continue
		}
		if !ok {
			r.AddError("final %s: record not found", key)
			continue
		}

		if a.Status != "" {
			status, _ := adr.ParseStatus(a.Status)
			if rec.Status != status {
				r.AddError("final %s: status = %s, expected %s", key, rec.Status, status)
			}
		}
		if a.Thread != nil && rec.ThreadID != *a.Thread {
			r.AddError("final %s: thread = %d, expected %d", key, rec.ThreadID, *a.Thread)
		}
		if a.ApprovedBy != nil && rec.ApprovedBy != *a.ApprovedBy {
			r.AddError("final %s: approved_by = %q, expected %q", key, rec.ApprovedBy, *a.ApprovedBy)
		}
		checkLink(r, key, "supersedes", rec.Supersedes, a.Supersedes)
		checkLink(r, key, "superseded_by", rec.SupersededBy, a.SupersededBy)

		for name, content := range a.Sections {
			if got := rec.Section(adr.Section(name)); got != content {
				r.AddError("final %s: section %s = %q, expected %q", key, name, got, content)
			}
		}

		if a.History != nil {
			actions := make([]string, len(rec.History))
			for i, h := range rec.History {
				actions[i] = h.Action
			}
			if !slices.Equal(actions, a.History) {
				r.AddError("final %s: history = %q, expected %q", key, actions, a.History)
			}
		}
	}
}

func checkLink(r *Result, key, field string, got, want *int64) {
	if want == nil {
		return
	}
	switch {
	case *want == 0 && got != nil:
		r.AddError("final %s: %s = %s, expected none", key, field, adr.Key(*got))
	case *want != 0 && got == nil:
		r.AddError("final %s: %s is empty, expected %s", key, field, adr.Key(*want))
	case *want != 0 && *got != *want:
		r.AddError("final %s: %s = %s, expected %s", key, field, adr.Key(*got), adr.Key(*want))
	}
}
