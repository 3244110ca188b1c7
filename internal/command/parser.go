package command

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/adrgov/internal/adr"
)

// DefaultKeyword is the command prefix word used when none is configured.
const DefaultKeyword = "adr"

// Parser recognizes command lines introduced by "/<keyword>".
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	prefix string
}

// NewParser returns a parser for the given keyword. An empty keyword
// selects DefaultKeyword.
func NewParser(keyword string) *Parser {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	return &Parser{prefix: "/" + normalize(keyword)}
}

// Prefix returns the command prefix, e.g. "/adr".
func (p *Parser) Prefix() string {
	return p.prefix
}

// block is a command line together with the body lines that follow it.
type block struct {
	line   int
	text   string
	action string
	arg    string
	body   []string
}

// Parse extracts every command from text. It returns nil, nil when text
// contains no command line at all.
func (p *Parser) Parse(text, actor string) ([]Command, error) {
	blocks, err := p.split(text)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}

	cmds := make([]Command, 0, len(blocks))
	for _, b := range blocks {
		cmd, err := build(b)
		if err != nil {
			return nil, err
		}
		cmd.Actor = actor
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// split groups lines into command blocks. Lines before the first command
// line are dropped.
func (p *Parser) split(text string) ([]block, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var blocks []block
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		rest, ok := p.cutPrefix(trimmed)
		if !ok {
			if len(blocks) > 0 {
				last := &blocks[len(blocks)-1]
				last.body = append(last.body, raw)
			}
			continue
		}

		action, arg := cutWord(rest)
		if action == "" {
			return nil, &ParseError{
				Line:   i + 1,
				Text:   trimmed,
				Reason: fmt.Sprintf("missing action after `%s`", p.prefix),
			}
		}
		blocks = append(blocks, block{
			line:   i + 1,
			text:   trimmed,
			action: normalize(action),
			arg:    arg,
		})
	}
	return blocks, nil
}

// cutPrefix reports whether line starts with the command prefix as a
// whole word, and returns the remainder.
func (p *Parser) cutPrefix(line string) (string, bool) {
	word, rest := cutWord(line)
	if normalize(word) != p.prefix {
		return "", false
	}
	return rest, true
}

func build(b block) (Command, error) {
	kind, ok := LookupKind(b.action)
	cmd := Command{Kind: kind, Action: b.action, Line: b.line}
	if !ok {
		cmd.Kind = KindUnrecognized
		return cmd, nil
	}

	switch kind {
	case KindFill, KindAppend:
		if b.arg == "" {
			cmd.Content = joinBody("", b.body)
			return cmd, nil
		}
		name, inline := cutWord(b.arg)
		section, err := ParseSection(name)
		if err != nil {
			return Command{}, sectionError(b, name, err)
		}
		cmd.Section = section
		cmd.Content = joinBody(inline, b.body)

	case KindShow:
		if b.arg == "" || normalize(b.arg) == "all" {
			return cmd, nil
		}
		section, err := ParseSection(b.arg)
		if err != nil {
			return Command{}, sectionError(b, b.arg, err)
		}
		cmd.Section = section

	case KindPropose, KindApprove, KindRefuse:
		if b.arg != "" {
			return Command{}, &ParseError{
				Line:   b.line,
				Text:   b.text,
				Reason: fmt.Sprintf("`%s` takes no arguments", b.action),
			}
		}

	case KindSupersede:
		if b.arg == "" {
			return cmd, nil
		}
		fields := strings.Fields(b.arg)
		if len(fields) != 2 {
			return Command{}, &ParseError{
				Line:   b.line,
				Text:   b.text,
				Reason: "`supersede` takes exactly two ADR ids",
			}
		}
		oldID, err := ParseID(fields[0])
		if err != nil {
			return Command{}, &ParseError{Line: b.line, Text: b.text, Reason: err.Error(), Err: err}
		}
		newID, err := ParseID(fields[1])
		if err != nil {
			return Command{}, &ParseError{Line: b.line, Text: b.text, Reason: err.Error(), Err: err}
		}
		cmd.OldID, cmd.NewID = oldID, newID

	case KindUnrecognized:
	}
	return cmd, nil
}

func sectionError(b block, name string, err error) *ParseError {
	return &ParseError{
		Line:   b.line,
		Text:   b.text,
		Reason: fmt.Sprintf("no such section `%s`", strings.TrimSpace(name)),
		Err:    err,
	}
}

// ParseSection maps a user-typed section name onto the fixed key set.
// Names are NFC-normalized, case-folded and whitespace-collapsed first,
// so "Context", " CONTEXT " and "context" are the same section.
func ParseSection(name string) (adr.Section, error) {
	s := adr.Section(normalize(name))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return s, nil
}

// ParseID accepts "42", "#42" and "ADR-42".
func ParseID(token string) (int64, error) {
	t := strings.TrimPrefix(normalize(token), "#")
	t = strings.TrimPrefix(t, "adr-")
	id, err := strconv.ParseInt(t, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ADR id `%s`", token)
	}
	return id, nil
}

func normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// cutWord splits s at the first run of whitespace.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func joinBody(inline string, body []string) string {
	text := strings.Join(body, "\n")
	if inline != "" {
		text = inline + "\n" + text
	}
	return strings.TrimSpace(text)
}
