package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/adrgov/internal/adr"
)

// Render formats a run as a plain-text transcript: every step with its
// input and the bot's answer, followed by the stored records.
func Render(name string, r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# scenario: %s\n", name)

	for _, ex := range r.Transcript {
		fmt.Fprintf(&b, "\n--- step %d: %s\n", ex.Step, ex.Header)
		if ex.Input != "" {
			b.WriteString(strings.TrimRight(ex.Input, "\n"))
			b.WriteString("\n")
		}
		switch {
		case ex.Err != "":
			fmt.Fprintf(&b, "<<< error: %s\n", ex.Err)
		case ex.Ignored != "":
			fmt.Fprintf(&b, "<<< ignored: %s\n", ex.Ignored)
		case ex.Reply != "":
			fmt.Fprintf(&b, "<<< #%d\n%s\n", ex.Thread, ex.Reply)
		default:
			b.WriteString("<<< (no reply)\n")
		}
	}

	b.WriteString("\n=== records\n")
	if len(r.Records) == 0 {
		b.WriteString("(none)\n")
	}
	for _, rec := range r.Records {
		b.WriteString(summary(rec))
		b.WriteString("\n")
		for _, h := range rec.History {
			fmt.Fprintf(&b, "  @%s: %s\n", h.Actor, h.Action)
		}
	}
	return []byte(b.String())
}

func summary(rec adr.Record) string {
	parts := []string{rec.Key(), rec.Status.String(), fmt.Sprintf("%q", rec.Title)}
	if rec.ThreadID != 0 {
		parts = append(parts, fmt.Sprintf("thread #%d", rec.ThreadID))
	}
	if rec.ApprovedBy != "" {
		parts = append(parts, "approved by @"+rec.ApprovedBy)
	}
	if rec.Supersedes != nil {
		parts = append(parts, "supersedes "+adr.Key(*rec.Supersedes))
	}
	if rec.SupersededBy != nil {
		parts = append(parts, "superseded by "+adr.Key(*rec.SupersededBy))
	}
	return strings.Join(parts, " ")
}

// RunWithGolden executes a scenario and compares its transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Render(scenarioName, result))
}
