package adr

import "strings"

// IsComplete reports whether every required section has non-blank content.
func IsComplete(r Record) bool {
	return len(Missing(r)) == 0
}

// Missing returns the required sections whose content is blank after
// trimming, in RequiredSections order. It returns nil for a complete record.
func Missing(r Record) []Section {
	var missing []Section
	for _, s := range RequiredSections {
		if strings.TrimSpace(r.Sections[s]) == "" {
			missing = append(missing, s)
		}
	}
	return missing
}
