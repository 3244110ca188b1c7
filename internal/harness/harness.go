package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/bot"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/event"
	"github.com/roach88/adrgov/internal/store"
	"github.com/roach88/adrgov/internal/testutil"
)

// DefaultFirstThread numbers the first thread the bot opens when the
// scenario does not say otherwise.
const DefaultFirstThread = 100

// seedActor authors seeded records that name no author.
const seedActor = "seed"

// Result is the outcome of one scenario run.
type Result struct {
	Pass       bool
	Errors     []string
	Transcript []Exchange
	Records    []adr.Record
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Exchange is one step as seen on the channel.
type Exchange struct {
	Step    int
	Header  string
	Input   string
	Thread  int64
	Reply   string
	Ignored string
	Err     string
}

// harness holds the collaborators of one run.
type harness struct {
	store      *store.Store
	channel    *testutil.Channel
	dispatcher *bot.Dispatcher
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// The returned error covers setup failures only; failed expectations and
// dispatcher errors are reported through Result.
func Run(s *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	first := s.FirstThread
	if first == 0 {
		first = DefaultFirstThread
	}
	channel := testutil.NewChannel(first)
	for _, th := range s.Threads {
		channel.AddThread(th.Number, th.Title)
	}

	h := &harness{
		store:   st,
		channel: channel,
		dispatcher: bot.New(st, channel,
			bot.WithService(engine.NewService(engine.WithClock(testutil.NewStepClock()))),
			bot.WithParser(command.NewParser(s.Keyword)),
			bot.WithRunTokens(testutil.FixedRunToken(s.RunToken)),
			bot.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
	}

	if err := h.seed(ctx, s.Records); err != nil {
		return nil, err
	}

	result := &Result{Pass: true}
	for i, step := range s.Steps {
		ex, out := h.runStep(ctx, i+1, step)
		result.Transcript = append(result.Transcript, ex)
		if step.Expect != nil {
			checkExpect(result, ex, out, step.Expect)
		}
	}

	records, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	result.Records = records
	checkFinal(result, records, s.Final)

	return result, nil
}

func (h *harness) seed(ctx context.Context, seeds []Seed) error {
	for _, sd := range seeds {
		author := sd.Author
		if author == "" {
			author = seedActor
		}
		rec := adr.New(sd.ID, sd.Title, author, testutil.Epoch)
		for name, content := range sd.Sections {
			rec.Sections[adr.Section(name)] = content
		}
		status, err := adr.ParseStatus(sd.Status)
		if err != nil {
			return fmt.Errorf("seed %s: %w", adr.Key(sd.ID), err)
		}
		rec.Status = status
		rec.ThreadID = sd.Thread
		rec.ApprovedBy = sd.ApprovedBy
		rec.AppendHistory(adr.HistoryEntry{Timestamp: testutil.Epoch, Actor: author, Action: "create", RunID: seedActor})

		if err := h.store.Save(ctx, &rec); err != nil {
			return fmt.Errorf("seed %s: %w", rec.Key(), err)
		}
	}
	return nil
}

func (h *harness) runStep(ctx context.Context, n int, step Step) (Exchange, bot.Outcome) {
	var (
		ex  = Exchange{Step: n}
		out bot.Outcome
		err error
	)

	switch {
	case step.Issue != nil:
		is := step.Issue
		ex.Header = fmt.Sprintf("issue #%d opened by @%s", is.Number, is.Author)
		ex.Input = is.Title
		if is.Body != "" {
			ex.Input += "\n" + is.Body
		}
		out, err = h.dispatcher.HandleCreation(ctx, event.Creation{
			SourceID: is.Number,
			Title:    is.Title,
			Body:     is.Body,
			Actor:    is.Author,
		})

	case step.Comment != nil:
		cm := step.Comment
		ex.Header = fmt.Sprintf("comment on #%d by @%s", cm.Thread, cm.Author)
		ex.Input = cm.Body
		out, err = h.dispatcher.HandleComment(ctx, event.Comment{
			ThreadID: cm.Thread,
			Body:     cm.Body,
			Actor:    cm.Author,
		})
	}

	ex.Thread = out.Thread
	ex.Reply = out.Reply
	ex.Ignored = out.Ignored
	if err != nil {
		ex.Err = err.Error()
	}
	return ex, out
}
