package github

import "strings"

// TitleHasMarker reports whether title contains marker not immediately
// followed by a digit, so "Issue #4" does not match "Issue #42".
func TitleHasMarker(title, marker string) bool {
	if marker == "" {
		return false
	}
	for i := 0; i < len(title); {
		j := strings.Index(title[i:], marker)
		if j < 0 {
			return false
		}
		end := i + j + len(marker)
		if end == len(title) || !isDigit(title[end]) {
			return true
		}
		i += j + 1
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
