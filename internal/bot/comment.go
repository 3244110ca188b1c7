package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/event"
	"github.com/roach88/adrgov/internal/store"
)

// HandleComment applies the commands in a comment and replies on its
// thread.
//
// Every command line is parsed before anything runs; a parse error rejects
// the whole comment. Commands then run in order, each persisted before the
// next starts. The first command that fails stops the run and the rest are
// reported as skipped.
func (d *Dispatcher) HandleComment(ctx context.Context, c event.Comment) (Outcome, error) {
	runID := d.tokens.Generate()
	out := Outcome{RunID: runID, Event: event.KindComment, Thread: c.ThreadID}
	log := d.logger.With("run_id", runID, "thread", c.ThreadID, "actor", c.Actor)

	cmds, err := d.parser.Parse(c.Body, c.Actor)
	if err != nil {
		var pe *command.ParseError
		if !errors.As(err, &pe) {
			return out, fmt.Errorf("parse comment: %w", err)
		}
		log.InfoContext(ctx, "comment rejected", "line", pe.Line, "reason", pe.Reason)
		return d.reply(ctx, out, pe.UserMessage())
	}
	if len(cmds) == 0 {
		out.Ignored = "no commands in comment"
		log.DebugContext(ctx, "comment ignored", "reason", out.Ignored)
		return out, nil
	}

	run := &commentRun{d: d, thread: c.ThreadID}
	var replies []string
	for i, cmd := range cmds {
		cmd.RunID = runID

		msg, err := run.apply(ctx, cmd)
		if err != nil && !engine.IsDomainError(err) {
			log.ErrorContext(ctx, "command failed", "command", cmd.String(), "applied", out.Applied, "error", err)
			return out, err
		}
		replies = append(replies, msg)
		if err != nil {
			out.Skipped = len(cmds) - i - 1
			log.InfoContext(ctx, "command refused", "command", cmd.String(), "error", err)
			break
		}
		out.Applied++
		log.InfoContext(ctx, "command applied", "command", cmd.String(), "record", run.key())
	}
	if out.Skipped > 0 {
		replies = append(replies, fmt.Sprintf("Skipped %d later command(s).", out.Skipped))
	}
	if run.current != nil {
		out.RecordID = run.current.ID
	}

	return d.reply(ctx, out, strings.Join(replies, "\n\n"))
}

func (d *Dispatcher) reply(ctx context.Context, out Outcome, msg string) (Outcome, error) {
	if err := d.channel.Post(ctx, out.Thread, msg); err != nil {
		return out, fmt.Errorf("post reply: %w", err)
	}
	out.Reply = msg
	return out, nil
}

// commentRun carries the record a comment operates on. The record is
// resolved lazily: a comment holding only a supersede never needs one.
type commentRun struct {
	d       *Dispatcher
	thread  int64
	current *adr.Record
}

func (r *commentRun) key() string {
	if r.current == nil {
		return ""
	}
	return r.current.Key()
}

func (r *commentRun) apply(ctx context.Context, cmd command.Command) (string, error) {
	if cmd.Kind == command.KindSupersede {
		return r.supersede(ctx, cmd)
	}

	if r.current == nil {
		rec, err := r.resolve(ctx)
		if err != nil {
			return engine.UserMessage(err), err
		}
		r.current = &rec
	}

	next, msg, err := r.d.service.Apply(*r.current, cmd)
	if err != nil {
		return msg, err
	}
	if cmd.Kind.Mutating() {
		if err := r.d.store.Save(ctx, &next); err != nil {
			return "", fmt.Errorf("save %s: %w", next.Key(), err)
		}
		*r.current = next
	}
	return msg, nil
}

// resolve finds the record bound to the thread. A comment on the
// originating issue itself resolves by id.
func (r *commentRun) resolve(ctx context.Context) (adr.Record, error) {
	rec, err := r.d.store.FindByThread(ctx, r.thread)
	if err == nil {
		return rec, nil
	}
	if !store.IsNotFound(err) {
		return adr.Record{}, fmt.Errorf("resolve thread %d: %w", r.thread, err)
	}

	rec, err = r.d.store.Load(ctx, r.thread)
	if err == nil {
		return rec, nil
	}
	if store.IsNotFound(err) {
		return adr.Record{}, &MissingRecordError{Thread: r.thread}
	}
	return adr.Record{}, fmt.Errorf("resolve thread %d: %w", r.thread, err)
}

func (r *commentRun) supersede(ctx context.Context, cmd command.Command) (string, error) {
	if cmd.OldID == 0 || cmd.NewID == 0 {
		// Let the engine produce the validation message.
		_, _, msg, err := r.d.service.Supersede(adr.Record{}, adr.Record{}, cmd)
		return msg, err
	}

	oldRec, err := r.load(ctx, cmd.OldID)
	if err != nil {
		return engine.UserMessage(err), err
	}
	newRec := oldRec
	if cmd.NewID != cmd.OldID {
		if newRec, err = r.load(ctx, cmd.NewID); err != nil {
			return engine.UserMessage(err), err
		}
	}

	o, n, msg, err := r.d.service.Supersede(oldRec, newRec, cmd)
	if err != nil {
		return msg, err
	}
	if err := r.d.store.SaveAll(ctx, &o, &n); err != nil {
		return "", fmt.Errorf("save supersession %s -> %s: %w", o.Key(), n.Key(), err)
	}

	if r.current != nil {
		switch r.current.ID {
		case o.ID:
			*r.current = o
		case n.ID:
			*r.current = n
		}
	}
	return msg, nil
}

func (r *commentRun) load(ctx context.Context, id int64) (adr.Record, error) {
	rec, err := r.d.store.Load(ctx, id)
	if store.IsNotFound(err) {
		return adr.Record{}, &MissingRecordError{ID: id}
	}
	if err != nil {
		return adr.Record{}, fmt.Errorf("load %s: %w", adr.Key(id), err)
	}
	return rec, nil
}
