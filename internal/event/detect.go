package event

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultKeywords mark an issue as an architecture decision.
var DefaultKeywords = []string{
	"architecture",
	"architectural",
	"design decision",
	"adr",
	"technical decision",
	"system design",
	"refactor",
	"redesign",
	"architectural choice",
}

// Detector decides whether a new issue should open an ADR.
type Detector struct {
	keywords []string
}

// NewDetector matches any of keywords, case-insensitively. An empty list
// selects DefaultKeywords.
func NewDetector(keywords []string) *Detector {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	d := &Detector{}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			d.keywords = append(d.keywords, cases.Fold().String(k))
		}
	}
	return d
}

// IsADR reports whether title or body mentions one of the keywords.
// Matching is by substring, so "adr" also matches inside longer words.
func (d *Detector) IsADR(title, body string) bool {
	text := cases.Fold().String(title + " " + body)
	for _, k := range d.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Keywords returns the folded keyword list.
func (d *Detector) Keywords() []string {
	out := make([]string, len(d.keywords))
	copy(out, d.keywords)
	return out
}
