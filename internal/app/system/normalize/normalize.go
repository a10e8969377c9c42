// internal/app/system/normalize/normalize.go

// Package normalize trims and canonicalises user-supplied strings before
// they are stored or compared.
package normalize

import (
	"slices"
	"strings"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tag lowercases a quest tag or interest and joins inner words with "-".
func Tag(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// Tags normalizes each tag, dropping blanks and duplicates while keeping
// first-seen order.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = Tag(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// QueryParam trims a query string value, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
