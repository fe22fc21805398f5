package metadata

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const quoteCutset = "\"“”"

// CleanTitle normalizes a raw listing title for metadata lookup: surrounding
// whitespace and straight or curly quotes are stripped, parenthesized
// segments removed, and internal whitespace runs collapsed. Removing a
// parenthesized segment can expose a quote at the edge, so the passes repeat
// until the string is stable; the result is idempotent.
func CleanTitle(title string) string {
	title = norm.NFC.String(title)
	for {
		cleaned := strings.TrimSpace(title)
		cleaned = strings.Trim(cleaned, quoteCutset)
		cleaned = parenthesized.ReplaceAllString(cleaned, "")
		cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == title {
			return cleaned
		}
		title = cleaned
	}
}
