package util

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"already slug", "hello-world", "hello-world"},
		{"mixed case and punctuation", "My First Exhibition!", "my-first-exhibition"},
		{"accents transliterated", "Galerie Münchén", "galerie-munchen"},
		{"collapses hyphen runs", "a -- b --- c", "a-b-c"},
		{"trims edges", "  --leading and trailing--  ", "leading-and-trailing"},
		{"numbers kept", "Top 10 Works of 2024", "top-10-works-of-2024"},
		{"symbols dropped", "oil & canvas @ 50%", "oil-canvas-50"},
		{"empty input", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Slugify(tc.in)

			if got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Whatever goes in, the output must be lowercase, restricted to [a-z0-9-],
// and free of leading/trailing/duplicate hyphens.
func TestSlugifyOutputAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	inputs := []string{
		"Hello World",
		"ÅÄÖ åäö",
		"--- ---",
		"UPPER_case_with_underscores",
		"tabs\tand\nnewlines",
		"emoji 🎨 inside",
		"trailing hyphen -",
	}

	for _, in := range inputs {
		got := Slugify(in)

		if got == "" {
			continue
		}

		if !valid.MatchString(got) {
			t.Errorf("Slugify(%q) = %q violates slug format", in, got)
		}

		if strings.Contains(got, "--") {
			t.Errorf("Slugify(%q) = %q contains duplicate hyphens", in, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"hello-world", true},
		{"a", true},
		{"top-10", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"with space", false},
	}

	for _, tc := range tests {
		if got := IsValidSlug(tc.in); got != tc.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
