package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/event"
)

// Thread naming defaults. The marker must appear in the title so that a
// second creation for the same issue finds the existing thread.
const (
	DefaultTitleFormat = "ADR – Issue #%d – %s"
	DefaultMarker      = "Issue #%d"
)

// Store is the document store the dispatcher persists records in.
type Store interface {
	Load(ctx context.Context, id int64) (adr.Record, error)
	FindByThread(ctx context.Context, thread int64) (adr.Record, error)
	Save(ctx context.Context, rec *adr.Record) error
	SaveAll(ctx context.Context, recs ...*adr.Record) error
}

// Channel is where replies are posted and threads are opened.
type Channel interface {
	Post(ctx context.Context, thread int64, message string) error
	FindThread(ctx context.Context, marker string) (int64, bool, error)
	CreateThread(ctx context.Context, title, body string) (int64, error)
}

// Outcome summarises one handled event.
type Outcome struct {
	RunID    string     `json:"run_id"`
	Event    event.Kind `json:"event"`
	RecordID int64      `json:"record_id,omitempty"`
	Thread   int64      `json:"thread,omitempty"`
	Reply    string     `json:"reply,omitempty"`   // "" when nothing was posted
	Applied  int        `json:"applied"`           // commands that succeeded
	Skipped  int        `json:"skipped"`           // commands not attempted after a failure
	Ignored  string     `json:"ignored,omitempty"` // why the event caused no action
}

// Dispatcher routes decoded events through the engine.
type Dispatcher struct {
	store       Store
	channel     Channel
	service     *engine.Service
	parser      *command.Parser
	detector    *event.Detector
	tokens      engine.RunTokenGenerator
	logger      *slog.Logger
	titleFormat string
	marker      string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithService sets the governance service (clock, separator).
func WithService(s *engine.Service) Option {
	return func(d *Dispatcher) { d.service = s }
}

// WithParser sets the command parser (keyword).
func WithParser(p *command.Parser) Option {
	return func(d *Dispatcher) { d.parser = p }
}

// WithDetector sets the ADR issue detector.
func WithDetector(det *event.Detector) Option {
	return func(d *Dispatcher) { d.detector = det }
}

// WithRunTokens sets the run token generator.
func WithRunTokens(g engine.RunTokenGenerator) Option {
	return func(d *Dispatcher) { d.tokens = g }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithThreadNaming sets the thread title format (record id, issue title)
// and the marker format (record id) used to find an existing thread.
func WithThreadNaming(titleFormat, marker string) Option {
	return func(d *Dispatcher) {
		d.titleFormat = titleFormat
		d.marker = marker
	}
}

// New creates a dispatcher over store and channel.
func New(store Store, channel Channel, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		channel:     channel,
		service:     engine.NewService(),
		parser:      command.NewParser(command.DefaultKeyword),
		detector:    event.NewDetector(nil),
		tokens:      engine.UUIDv7Generator{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		titleFormat: DefaultTitleFormat,
		marker:      DefaultMarker,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes ev to completion.
func (d *Dispatcher) Handle(ctx context.Context, ev event.Event) (Outcome, error) {
	switch ev.Kind {
	case event.KindCreation:
		return d.HandleCreation(ctx, ev.Creation)
	case event.KindComment:
		return d.HandleComment(ctx, ev.Comment)
	default:
		runID := d.tokens.Generate()
		d.logger.InfoContext(ctx, "event ignored", "run_id", runID, "event", ev.Name, "reason", ev.Reason)
		return Outcome{RunID: runID, Event: event.KindIgnored, Ignored: ev.Reason}, nil
	}
}

func (d *Dispatcher) threadTitle(id int64, title string) string {
	return fmt.Sprintf(d.titleFormat, id, title)
}

func (d *Dispatcher) threadMarker(id int64) string {
	return fmt.Sprintf(d.marker, id)
}
