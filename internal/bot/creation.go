package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/event"
	"github.com/roach88/adrgov/internal/store"
)

// HandleCreation opens a record for a newly opened ADR issue.
//
// The record id is the issue number. Running twice for the same issue is a
// no-op the second time: the existing record is detected and nothing is
// posted.
func (d *Dispatcher) HandleCreation(ctx context.Context, c event.Creation) (Outcome, error) {
	runID := d.tokens.Generate()
	out := Outcome{RunID: runID, Event: event.KindCreation, RecordID: c.SourceID}
	log := d.logger.With("run_id", runID, "source", c.SourceID)

	ignore := func(reason string) (Outcome, error) {
		log.InfoContext(ctx, "creation ignored", "reason", reason)
		out.Ignored = reason
		return out, nil
	}

	if !d.detector.IsADR(c.Title, c.Body) {
		return ignore("no ADR keyword in title or body")
	}

	// Threads we opened carry the keyword too; they must not spawn records.
	if bound, err := d.store.FindByThread(ctx, c.SourceID); err == nil {
		return ignore(fmt.Sprintf("issue is the thread of %s", bound.Key()))
	} else if !store.IsNotFound(err) {
		return out, fmt.Errorf("check thread binding: %w", err)
	}

	if existing, err := d.store.Load(ctx, c.SourceID); err == nil {
		return ignore(fmt.Sprintf("%s already exists", existing.Key()))
	} else if !store.IsNotFound(err) {
		return out, fmt.Errorf("check existing record: %w", err)
	}

	thread, err := d.getOrCreateThread(ctx, c)
	if err != nil {
		return out, err
	}
	out.Thread = thread

	rec := d.service.Create(c.SourceID, c.Title, c.Actor, runID)
	rec.ThreadID = thread
	if err := d.store.Save(ctx, &rec); err != nil {
		return out, fmt.Errorf("save new record: %w", err)
	}

	reply := fmt.Sprintf("%s created and ready to be filled.", rec.Key())
	if err := d.channel.Post(ctx, thread, reply); err != nil {
		return out, fmt.Errorf("post creation reply: %w", err)
	}
	out.Reply = reply

	log.InfoContext(ctx, "record created", "record", rec.Key(), "thread", thread, "actor", c.Actor)
	return out, nil
}

func (d *Dispatcher) getOrCreateThread(ctx context.Context, c event.Creation) (int64, error) {
	marker := d.threadMarker(c.SourceID)
	thread, ok, err := d.channel.FindThread(ctx, marker)
	if err != nil {
		return 0, fmt.Errorf("find thread %q: %w", marker, err)
	}
	if ok {
		d.logger.DebugContext(ctx, "reusing thread", "thread", thread, "marker", marker)
		return thread, nil
	}

	thread, err = d.channel.CreateThread(ctx, d.threadTitle(c.SourceID, strings.TrimSpace(c.Title)), d.threadBody(c.SourceID))
	if err != nil {
		return 0, fmt.Errorf("create thread: %w", err)
	}
	d.logger.DebugContext(ctx, "opened thread", "thread", thread, "marker", marker)
	return thread, nil
}

// threadBody is the opening post of a new thread.
func (d *Dispatcher) threadBody(id int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decision record for #%d. Comment here with commands:\n\n", id)
	for _, k := range command.Kinds {
		fmt.Fprintf(&b, "- `%s %s`\n", d.parser.Prefix(), usage(k))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func usage(k command.Kind) string {
	switch k {
	case command.KindFill, command.KindAppend:
		return k.String() + " <section>"
	case command.KindShow:
		return k.String() + " [section]"
	case command.KindSupersede:
		return k.String() + " <old> <new>"
	default:
		return k.String()
	}
}
