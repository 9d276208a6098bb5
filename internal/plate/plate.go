// Package plate derives the canonical vehicle identity used for conflict
// matching. User-typed renderings of the same physical plate ("12가 3456",
// "12-가-3456") must collapse to one key.
package plate

import (
	"strings"
	"unicode"
)

// Normalize strips whitespace and dash separators and upper-cases the rest.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Display trims surrounding whitespace but keeps the user's formatting.
func Display(raw string) string {
	return strings.TrimSpace(raw)
}
