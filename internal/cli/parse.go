package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/adrgov/internal/command"
	"github.com/roach88/adrgov/internal/config"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Actor   string
	Keyword string
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Dry-run the command parser on stdin",
		Long: `Read a comment body from stdin and print the commands it contains.

Nothing is stored or posted. A comment that does not parse prints the
reply the bot would post and exits with status 1.

Examples:
  echo "/adr propose" | adrgov parse
  adrgov parse --keyword decision --format json < comment.md`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Actor, "actor", "operator", "author stamped on parsed commands")
	cmd.Flags().StringVar(&opts.Keyword, "keyword", "", "command keyword (default from config)")

	return cmd
}

func runParse(cmd *cobra.Command, opts *ParseOptions) error {
	f := opts.formatter(cmd)

	keyword := opts.Keyword
	if keyword == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return f.Fail(ExitCommandError, CodeConfig, "failed to load configuration", err)
		}
		keyword = cfg.Keyword
	}

	body, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return f.Fail(ExitCommandError, CodeParse, "failed to read stdin", err)
	}

	parser := command.NewParser(keyword)
	cmds, err := parser.Parse(string(body), opts.Actor)
	if err != nil {
		var pe *command.ParseError
		if !errors.As(err, &pe) {
			return f.Fail(ExitCommandError, CodeParse, "parse failed", err)
		}
		if f.Format == "json" {
			_ = f.Error(CodeParse, pe.UserMessage(), map[string]any{"line": pe.Line, "text": pe.Text})
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), pe.UserMessage())
		}
		return NewExitError(ExitFailure, pe.Error())
	}

	if cmds == nil {
		cmds = []command.Command{}
	}
	return f.Success(cmds, func(w io.Writer) {
		if len(cmds) == 0 {
			fmt.Fprintf(w, "No %s commands found.\n", parser.Prefix())
			return
		}
		for _, c := range cmds {
			fmt.Fprintf(w, "line %d: %s\n", c.Line, c)
			if c.Content != "" {
				fmt.Fprintf(w, "  content: %q\n", c.Content)
			}
		}
	})
}
