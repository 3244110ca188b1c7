package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/adrgov/internal/adr"
	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/config"
	"github.com/roach88/adrgov/internal/engine"
	"github.com/roach88/adrgov/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	Section  string
	History  bool
}

// RecordSummary is one line of the record listing.
type RecordSummary struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	ThreadID int64  `json:"thread_id,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print stored records",
		Long: `Print one record, or list every record when no id is given.

The id may be written 42, #42 or ADR-42. Text output is the same Markdown
the bot posts for /adr show.

Examples:
  adrgov show
  adrgov show ADR-42
  adrgov show 42 --section decision
  adrgov show 42 --history --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Section, "section", "", "show only this section")
	cmd.Flags().BoolVar(&opts.History, "history", false, "include the audit trail")

	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions, args []string) error {
	f := opts.formatter(cmd)

	dbPath := opts.Database
	if dbPath == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return f.Fail(ExitCommandError, CodeConfig, "failed to load configuration", err)
		}
		dbPath = cfg.Database
	}
	if _, err := os.Stat(dbPath); err != nil {
		return f.Fail(ExitCommandError, CodeStore, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		records, err := st.List(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, CodeStore, "failed to list records", err)
		}
		return writeList(f, records)
	}

	id, err := command.ParseID(args[0])
	if err != nil {
		return f.Fail(ExitFailure, CodeNotFound, err.Error(), nil)
	}
	var section adr.Section
	if opts.Section != "" {
		if section, err = command.ParseSection(opts.Section); err != nil {
			return f.Fail(ExitFailure, CodeParse, err.Error(), nil)
		}
	}

	rec, err := st.Load(ctx, id)
	if store.IsNotFound(err) {
		return f.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("%s does not exist", adr.Key(id)), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, CodeStore, "failed to load record", err)
	}

	if !opts.History && f.Format == "json" {
		rec.History = nil
	}
	return f.Success(rec, func(w io.Writer) {
		fmt.Fprintln(w, engine.Render(rec, section))
		if opts.History {
			writeHistory(w, rec.History)
		}
	})
}

func writeList(f *OutputFormatter, records []adr.Record) error {
	summaries := make([]RecordSummary, len(records))
	for i, rec := range records {
		summaries[i] = RecordSummary{
			ID:       rec.ID,
			Key:      rec.Key(),
			Title:    rec.Title,
			Status:   rec.Status.String(),
			ThreadID: rec.ThreadID,
		}
	}

	return f.Success(summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No records.")
			return
		}
		for _, s := range summaries {
			thread := "-"
			if s.ThreadID != 0 {
				thread = fmt.Sprintf("#%d", s.ThreadID)
			}
			fmt.Fprintf(w, "%-8s %-10s %-6s %s\n", s.Key, s.Status, thread, s.Title)
		}
	})
}

func writeHistory(w io.Writer, history []adr.HistoryEntry) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History:")
	for _, h := range history {
		fmt.Fprintf(w, "  %s @%s %s", h.Timestamp.UTC().Format(time.RFC3339), h.Actor, h.Action)
		if h.RunID != "" {
			fmt.Fprintf(w, " [%s]", h.RunID)
		}
		fmt.Fprintln(w)
	}
}
