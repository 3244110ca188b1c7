package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/adrgov/internal/adr"
)

const emptySection = "_(empty)_"

// Render formats rec as a Markdown reply. With a section it shows only
// that section; with "" it shows the header and every section.
func Render(rec adr.Record, section adr.Section) string {
	if section != "" {
		return fmt.Sprintf("#### %s (%s)\n%s", section.Heading(), rec.Key(), body(rec, section))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### %s: %s\n\n", rec.Key(), rec.Title)
	fmt.Fprintf(&b, "Status: %s", rec.Status)
	if rec.ApprovedBy != "" {
		fmt.Fprintf(&b, " (approved by @%s)", rec.ApprovedBy)
	}
	b.WriteString("\n")
	if rec.Supersedes != nil {
		fmt.Fprintf(&b, "Supersedes: %s\n", adr.Key(*rec.Supersedes))
	}
	if rec.SupersededBy != nil {
		fmt.Fprintf(&b, "Superseded by: %s\n", adr.Key(*rec.SupersededBy))
	}
	if Editable(rec.Status) {
		if missing := adr.Missing(rec); len(missing) > 0 {
			fmt.Fprintf(&b, "Missing sections: %s\n", joinSections(missing))
		}
	}
	for _, s := range adr.AllSections {
		fmt.Fprintf(&b, "\n#### %s\n%s\n", s.Heading(), body(rec, s))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func body(rec adr.Record, s adr.Section) string {
	v := rec.Sections[s]
	switch s {
	case adr.SectionTitle:
		v = rec.Title
	case adr.SectionStatus:
		v = rec.Status.String()
	}
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return emptySection
}
