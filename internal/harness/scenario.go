package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adrgov/internal/adr"
)

// Scenario is one scripted conversation.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// RunToken is the run id stamped on every step.
	// Defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`

	// FirstThread is the number given to the first thread the bot opens.
	// Defaults to 100.
	FirstThread int64 `yaml:"first_thread,omitempty"`

	// Keyword overrides the command keyword.
	Keyword string `yaml:"keyword,omitempty"`

	// Threads exist before the first step.
	Threads []Thread `yaml:"threads,omitempty"`

	// Records exist before the first step.
	Records []Seed `yaml:"records,omitempty"`

	// Steps are replayed in order.
	Steps []Step `yaml:"steps"`

	// Final checks the records after the last step.
	Final []RecordAssertion `yaml:"final,omitempty"`
}

// Thread is a pre-existing discussion thread.
type Thread struct {
	Number int64  `yaml:"number"`
	Title  string `yaml:"title"`
}

// Seed is a pre-existing record.
type Seed struct {
	ID         int64             `yaml:"id"`
	Title      string            `yaml:"title"`
	Status     string            `yaml:"status"`
	Thread     int64             `yaml:"thread,omitempty"`
	Author     string            `yaml:"author,omitempty"`
	ApprovedBy string            `yaml:"approved_by,omitempty"`
	Sections   map[string]string `yaml:"sections,omitempty"`
}

// Step is exactly one of an opened issue or a posted comment.
type Step struct {
	Issue   *IssueStep   `yaml:"issue,omitempty"`
	Comment *CommentStep `yaml:"comment,omitempty"`
	Expect  *Expect      `yaml:"expect,omitempty"`
}

// IssueStep opens an issue.
type IssueStep struct {
	Number int64  `yaml:"number"`
	Title  string `yaml:"title"`
	Body   string `yaml:"body,omitempty"`
	Author string `yaml:"author"`
}

// CommentStep posts a comment on a thread.
type CommentStep struct {
	Thread int64  `yaml:"thread"`
	Body   string `yaml:"body"`
	Author string `yaml:"author,omitempty"`
}

// Expect checks the outcome of one step. Unset fields are not checked.
type Expect struct {
	Reply         *string  `yaml:"reply,omitempty"`
	ReplyContains []string `yaml:"reply_contains,omitempty"`
	Ignored       *string  `yaml:"ignored,omitempty"`
	Thread        *int64   `yaml:"thread,omitempty"`
	Applied       *int     `yaml:"applied,omitempty"`
	Skipped       *int     `yaml:"skipped,omitempty"`
}

// RecordAssertion checks one stored record. Unset fields are not checked;
// Sections is a subset match and History is the exact action list.
type RecordAssertion struct {
	ID           int64             `yaml:"id"`
	Missing      bool              `yaml:"missing,omitempty"`
	Status       string            `yaml:"status,omitempty"`
	Thread       *int64            `yaml:"thread,omitempty"`
	ApprovedBy   *string           `yaml:"approved_by,omitempty"`
	Supersedes   *int64            `yaml:"supersedes,omitempty"`
	SupersededBy *int64            `yaml:"superseded_by,omitempty"`
	Sections     map[string]string `yaml:"sections,omitempty"`
	History      []string          `yaml:"history,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := map[string]string{}
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", s.Name, prev, p)
		}
		names[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}

	for i, th := range s.Threads {
		if th.Number <= 0 {
			return fmt.Errorf("threads[%d]: number must be positive", i)
		}
	}

	for i, r := range s.Records {
		if r.ID <= 0 {
			return fmt.Errorf("records[%d]: id must be positive", i)
		}
		if _, err := adr.ParseStatus(r.Status); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		if err := validateSections(r.Sections); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		switch {
		case step.Issue != nil && step.Comment != nil:
			return fmt.Errorf("steps[%d]: issue and comment are mutually exclusive", i)
		case step.Issue != nil:
			if step.Issue.Number <= 0 {
				return fmt.Errorf("steps[%d].issue: number must be positive", i)
			}
		case step.Comment != nil:
			if step.Comment.Thread <= 0 {
				return fmt.Errorf("steps[%d].comment: thread must be positive", i)
			}
		default:
			return fmt.Errorf("steps[%d]: one of issue or comment is required", i)
		}
	}

	for i, a := range s.Final {
		if a.ID <= 0 {
			return fmt.Errorf("final[%d]: id must be positive", i)
		}
		if a.Status != "" {
			if _, err := adr.ParseStatus(a.Status); err != nil {
				return fmt.Errorf("final[%d]: %w", i, err)
			}
		}
		if err := validateSections(a.Sections); err != nil {
			return fmt.Errorf("final[%d]: %w", i, err)
		}
	}

	return nil
}

func validateSections(sections map[string]string) error {
	for name := range sections {
		if !adr.Section(name).Valid() {
			return fmt.Errorf("unknown section %q", name)
		}
	}
	return nil
}
