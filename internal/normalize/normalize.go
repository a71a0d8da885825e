// Package normalize canonicalizes free-text account and label strings for
// matching. Every keyword and label comparison in the system goes through
// Text; matching is never done on raw input.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so that accented
// characters compare equal to their base form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text lowercases s, strips diacritics, replaces every character that is not
// a letter, digit, or whitespace with a space, collapses whitespace runs, and
// trims. It is deterministic, pure, and total: empty input yields "".
func Text(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		// Whitespace and punctuation both collapse to a single separator.
		pendingSpace = true
	}
	return b.String()
}
