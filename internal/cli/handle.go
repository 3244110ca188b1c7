package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/bot"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/config"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/event"
	"github.com/roach88/adrgov/internal/github"
	"github.com/roach88/adrgov/internal/store"
)

// HandleOptions holds flags for the handle command.
type HandleOptions struct {
	*RootOptions
	EventName string
	EventPath string
	Database  string

	// RunTokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunTokens engine.RunTokenGenerator
}

// NewHandleCommand creates the handle command.
func NewHandleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HandleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Process one GitHub event",
		Long: `Process the GitHub event a workflow was triggered by.

The event name and payload default to GITHUB_EVENT_NAME and
GITHUB_EVENT_PATH. Opened issues that look like architecture decisions
get a record and a thread; comments carrying commands are applied and
answered on their thread.

Exit codes:
  0 - Event handled (including ignored events and refused commands)
  2 - Infrastructure error (config, payload, database, GitHub)

Examples:
  adrgov handle
  adrgov handle --event-name issue_comment --event-path ./event.json
  adrgov handle --db ./adr.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandle(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.EventName, "event-name", "", "event name (default $GITHUB_EVENT_NAME)")
	cmd.Flags().StringVar(&opts.EventPath, "event-path", "", "event payload file (default $GITHUB_EVENT_PATH)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runHandle(cmd *cobra.Command, opts *HandleOptions) error {
	f := opts.formatter(cmd)
	log := opts.logger(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return f.Fail(ExitCommandError, CodeConfig, "failed to load configuration", err)
	}
	if opts.EventName != "" {
		cfg.Event.Name = opts.EventName
	}
	if opts.EventPath != "" {
		cfg.Event.Path = opts.EventPath
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cfg.Event.Path == "" {
		return f.Fail(ExitCommandError, CodeEvent, "no event payload: set --event-path or GITHUB_EVENT_PATH", nil)
	}

	ev, err := event.ReadFile(cfg.Event.Name, cfg.Event.Path)
	if err != nil {
		return f.Fail(ExitCommandError, CodeEvent, "failed to decode event", err)
	}
	log.Debug("event decoded", "event", ev.Name, "kind", ev.Kind.String(), "path", cfg.Event.Path)

	tokens := opts.RunTokens
	if tokens == nil {
		tokens = engine.UUIDv7Generator{}
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	// Unrelated events never need credentials or the database.
	if ev.Kind == event.KindIgnored {
		out, _ := bot.New(nil, nil, bot.WithRunTokens(tokens), bot.WithLogger(log)).Handle(parent, ev)
		return writeOutcome(f, out)
	}

	if err := cfg.RequireGitHub(); err != nil {
		return f.Fail(ExitCommandError, CodeConfig, "incomplete configuration", err)
	}

	if dir := filepath.Dir(cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return f.Fail(ExitCommandError, CodeStore, "failed to create database directory", err)
		}
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return f.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo)
	if cfg.GitHub.APIURL != "" {
		client = client.WithBaseURL(cfg.GitHub.APIURL)
	}
	client = client.WithRateLimit(cfg.GitHub.RateLimit, github.RequestBurst)

	d := bot.New(st, client,
		bot.WithService(engine.NewService(engine.WithSeparator(cfg.AppendSeparator))),
		bot.WithParser(command.NewParser(cfg.Keyword)),
		bot.WithDetector(event.NewDetector(cfg.Detection.Keywords)),
		bot.WithThreadNaming(cfg.Thread.TitleFormat, cfg.Thread.Marker),
		bot.WithRunTokens(tokens),
		bot.WithLogger(log),
	)

	ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
	defer cancel()

	out, err := d.Handle(ctx, ev)
	if err != nil {
		log.Error("event failed", "run_id", out.RunID, "event", ev.Name, "error", err)
		return f.Fail(ExitCommandError, CodeHandle, fmt.Sprintf("failed to handle %s event", ev.Name), err)
	}
	return writeOutcome(f, out)
}

func writeOutcome(f *OutputFormatter, out bot.Outcome) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: out, RunID: out.RunID})
	}
	return f.Success(out, func(w io.Writer) {
		fmt.Fprintf(w, "run: %s\n", out.RunID)
		fmt.Fprintf(w, "event: %s\n", out.Event)
		if out.Ignored != "" {
			fmt.Fprintf(w, "ignored: %s\n", out.Ignored)
			return
		}
		if out.RecordID != 0 {
			fmt.Fprintf(w, "record: %s\n", adr.Key(out.RecordID))
		}
		if out.Thread != 0 {
			fmt.Fprintf(w, "thread: #%d\n", out.Thread)
		}
		if out.Event == event.KindComment {
			fmt.Fprintf(w, "applied: %d, skipped: %d\n", out.Applied, out.Skipped)
		}
		if out.Reply != "" {
			fmt.Fprintf(w, "reply:\n%s\n", out.Reply)
		}
	})
}
