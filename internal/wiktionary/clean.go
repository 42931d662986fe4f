package wiktionary

import "strings"

// FixWhitespace makes text safe for a single TSV cell. Text after the first
// newline is dropped (it is usually an editor comment) and tabs become
// spaces. ok is false when anything had to change.
func FixWhitespace(text string) (fixed string, ok bool) {
	ok = true
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
		ok = false
	}
	if strings.Contains(text, "\t") {
		text = strings.ReplaceAll(text, "\t", " ")
		ok = false
	}
	return text, ok
}
