// Package util holds small shared helpers, most notably URL slug
// derivation for content titles.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed  = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title to a URL-safe slug: accents are transliterated,
// the result is lowercased, spaces become hyphens, everything outside
// [a-z0-9-] is dropped and hyphen runs collapse to a single hyphen.
func Slugify(s string) string {
	// Decompose accented characters and strip the combining marks.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugDisallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s already satisfies the slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
