package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
)

// DefaultSeparator joins appended content to what a section already holds.
const DefaultSeparator = "\n"

// Service applies governance commands to records.
//
// Every method is all-or-nothing: it either returns an updated copy with
// exactly one new history entry per touched record, or an error and the
// inputs unchanged.
type Service struct {
	clock     Clock
	separator string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the timestamp source for history entries.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithSeparator sets the string inserted between appended blocks.
func WithSeparator(sep string) Option {
	return func(s *Service) { s.separator = sep }
}

// NewService returns a Service using the system clock and DefaultSeparator
// unless overridden.
func NewService(opts ...Option) *Service {
	s := &Service{clock: SystemClock{}, separator: DefaultSeparator}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create returns a new record in INIT with its creation history entry.
func (s *Service) Create(id int64, title, actor, runID string) adr.Record {
	now := s.clock.Now()
	rec := adr.New(id, strings.TrimSpace(title), actor, now)
	rec.AppendHistory(adr.HistoryEntry{Timestamp: now, Actor: actor, Action: "create", RunID: runID})
	return rec
}

// Apply runs a single-record command against rec.
//
// The returned message is suitable for posting to the thread whether or
// not err is nil. On error the returned record is rec itself. Show never
// changes the record and appends no history.
//
// Supersede touches two records and must go through Supersede instead.
func (s *Service) Apply(rec adr.Record, cmd command.Command) (adr.Record, string, error) {
	if cmd.Kind == command.KindSupersede {
		err := fmt.Errorf("engine: supersede needs both records, use Service.Supersede")
		return rec, UserMessage(err), err
	}
	if err := validate(cmd); err != nil {
		return rec, UserMessage(err), err
	}

	next, err := check(rec, cmd.Kind)
	if err != nil {
		return rec, UserMessage(err), err
	}

	if cmd.Kind == command.KindShow {
		return rec, Render(rec, cmd.Section), nil
	}

	if cmd.Kind == command.KindPropose {
		if missing := adr.Missing(rec); len(missing) > 0 {
			err := &IncompleteError{RecordID: rec.ID, Missing: missing}
			return rec, UserMessage(err), err
		}
	}

	out := rec.Clone()
	var msg string
	switch cmd.Kind {
	case command.KindFill:
		out.Sections[cmd.Section] = strings.TrimSpace(cmd.Content)
		out.Status = settle(next, out)
		msg = fmt.Sprintf("%s: section `%s` updated.", out.Key(), cmd.Section)

	case command.KindAppend:
		content := strings.TrimSpace(cmd.Content)
		if existing := out.Sections[cmd.Section]; existing != "" {
			content = existing + s.separator + content
		}
		out.Sections[cmd.Section] = content
		out.Status = settle(next, out)
		msg = fmt.Sprintf("%s: appended to section `%s`.", out.Key(), cmd.Section)

	case command.KindPropose:
		out.Status = next
		msg = fmt.Sprintf("%s proposed for approval.", out.Key())

	case command.KindApprove:
		out.Status = next
		out.ApprovedBy = cmd.Actor
		msg = fmt.Sprintf("%s approved by @%s.", out.Key(), cmd.Actor)

	case command.KindRefuse:
		out.Status = next
		msg = fmt.Sprintf("%s refused by @%s.", out.Key(), cmd.Actor)

	case command.KindShow, command.KindSupersede, command.KindUnrecognized:
		// handled above
		err := fmt.Errorf("engine: unexpected command %s", cmd.Kind)
		return rec, UserMessage(err), err
	}

	out.AppendHistory(s.entry(cmd, cmd.String()))
	return out, msg, nil
}

// Supersede marks oldRec as replaced by newRec. Both returned records carry
// one new history entry each and must be persisted together.
func (s *Service) Supersede(oldRec, newRec adr.Record, cmd command.Command) (adr.Record, adr.Record, string, error) {
	if err := validate(cmd); err != nil {
		return oldRec, newRec, UserMessage(err), err
	}
	if oldRec.ID != cmd.OldID || newRec.ID != cmd.NewID {
		err := fmt.Errorf("engine: supersede %d %d called with records %d and %d",
			cmd.OldID, cmd.NewID, oldRec.ID, newRec.ID)
		return oldRec, newRec, UserMessage(err), err
	}

	o, n := oldRec.Clone(), newRec.Clone()
	if err := Link(&o, &n); err != nil {
		return oldRec, newRec, UserMessage(err), err
	}

	o.AppendHistory(s.entry(cmd, "superseded by "+n.Key()))
	n.AppendHistory(s.entry(cmd, "supersedes "+o.Key()))
	return o, n, fmt.Sprintf("%s superseded by %s.", o.Key(), n.Key()), nil
}

func (s *Service) entry(cmd command.Command, action string) adr.HistoryEntry {
	return adr.HistoryEntry{
		Timestamp: s.clock.Now(),
		Actor:     cmd.Actor,
		Action:    action,
		RunID:     cmd.RunID,
	}
}

var derivedFrom = map[adr.Section]string{
	adr.SectionTitle:  "it follows the issue title.",
	adr.SectionStatus: "it follows the lifecycle (`propose`, `approve`, `refuse`, `supersede`).",
}

// validate checks that cmd carries everything its kind requires.
func validate(cmd command.Command) error {
	switch cmd.Kind {
	case command.KindUnrecognized:
		return &UnrecognizedError{Action: cmd.Action}

	case command.KindFill, command.KindAppend:
		if cmd.Section == "" {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "section",
				Message: fmt.Sprintf("`%s` requires a section name: `/adr %s <section>`.", cmd.Kind, cmd.Kind),
			}
		}
		if !cmd.Section.Valid() {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "section",
				Message: fmt.Sprintf("No such section `%s`.", cmd.Section),
			}
		}
		if cmd.Section.Derived() {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "section",
				Message: fmt.Sprintf("Section `%s` cannot be edited: %s", cmd.Section, derivedFrom[cmd.Section]),
			}
		}
		if strings.TrimSpace(cmd.Content) == "" {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "content",
				Message: fmt.Sprintf("`%s %s` requires non-empty content below the command line.", cmd.Kind, cmd.Section),
			}
		}

	case command.KindSupersede:
		if cmd.OldID == 0 || cmd.NewID == 0 {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "ids",
				Message: "`supersede` requires two ADR ids: `/adr supersede <old> <new>`.",
			}
		}

	case command.KindShow:
		if cmd.Section != "" && !cmd.Section.Valid() {
			return &ValidationError{
				Command: cmd.Kind,
				Field:   "section",
				Message: fmt.Sprintf("No such section `%s`.", cmd.Section),
			}
		}
		return nil

	case command.KindPropose, command.KindApprove, command.KindRefuse:
	}

	if cmd.Actor == "" {
		return &ValidationError{
			Command: cmd.Kind,
			Field:   "actor",
			Message: fmt.Sprintf("`%s` needs an identified author.", cmd.Kind),
		}
	}
	return nil
}
