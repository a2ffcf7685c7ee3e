// Package slug derives URL slugs from titles.
package slug

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// FromTitle lower-cases title, joins whitespace runs with '-', keeps only
// [a-z0-9-], collapses repeated dashes and trims them from both ends. When
// nothing survives, fallback is returned.
func FromTitle(title, fallback string) string {
	words := strings.Fields(lower.String(title))
	joined := strings.Join(words, "-")

	var b strings.Builder
	lastDash := false
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '-':
			if !lastDash {
				b.WriteRune(r)
			}
			lastDash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return fallback
	}
	return s
}

// Resolve returns the trimmed explicit slug, or one derived from title.
func Resolve(explicit, title, fallback string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	return FromTitle(title, fallback)
}
