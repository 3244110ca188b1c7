package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
	prefix   string
}

func (e *ValidationError) Error() string {
	prefix := e.prefix
	if prefix == "" {
		prefix = "invalid configuration"
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// schemaView is the shape the CUE schema constrains.
type schemaView struct {
	Keyword         string `json:"keyword"`
	Database        string `json:"database"`
	AppendSeparator string `json:"append_separator"`
	TimeoutMS       int64  `json:"timeout_ms"`
	Thread          struct {
		TitleFormat string `json:"title_format"`
		Marker      string `json:"marker"`
	} `json:"thread"`
	Detection struct {
		Keywords []string `json:"keywords"`
	} `json:"detection"`
	GitHub struct {
		Owner  string  `json:"owner"`
		Repo   string  `json:"repo"`
		Token  string  `json:"token"`
		APIURL string  `json:"api_url"`
		RPS    float64 `json:"requests_per_second"`
	} `json:"github"`
	Event struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"event"`
}

func (c *Config) view() schemaView {
	var s schemaView
	s.Keyword = c.Keyword
	s.Database = c.Database
	s.AppendSeparator = c.AppendSeparator
	s.TimeoutMS = c.Timeout.Milliseconds()
	s.Thread.TitleFormat = c.Thread.TitleFormat
	s.Thread.Marker = c.Thread.Marker
	s.Detection.Keywords = c.Detection.Keywords
	if s.Detection.Keywords == nil {
		s.Detection.Keywords = []string{}
	}
	s.GitHub.Owner = c.GitHub.Owner
	s.GitHub.Repo = c.GitHub.Repo
	s.GitHub.Token = c.GitHub.Token
	s.GitHub.APIURL = c.GitHub.APIURL
	s.GitHub.RPS = c.GitHub.RateLimit
	s.Event.Name = c.Event.Name
	s.Event.Path = c.Event.Path
	return s
}

// Validate checks cfg against the embedded schema, then checks that the
// thread marker can be found in the titles the format produces.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	val := def.Unify(ctx.Encode(cfg.view()))
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Problems: problems(err)}
	}

	title := fmt.Sprintf(cfg.Thread.TitleFormat, 1, "title")
	if marker := fmt.Sprintf(cfg.Thread.Marker, 1); !strings.Contains(title, marker) {
		return &ValidationError{Problems: []string{
			fmt.Sprintf("thread.marker: %q does not occur in titles made by thread.title_format (%q)", marker, title),
		}}
	}
	return nil
}

// problems renders each CUE error as "path: message".
func problems(err error) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		p := fmt.Sprintf("%s: %s", strings.Join(e.Path(), "."), fmt.Sprintf(format, args...))
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
