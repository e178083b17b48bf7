package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key returns the comparison key for names, aliases, and body-mod entries:
// surrounding whitespace trimmed and lowercased with Unicode case rules.
func Key(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return cases.Lower(language.Und).String(trimmed)
}

// EqualFold reports whether a and b share the same comparison key.
func EqualFold(a, b string) bool {
	return Key(a) == Key(b)
}

// DedupeFold removes entries whose Key repeats an earlier entry, keeping the
// first spelling and the original order. Blank entries are dropped.
func DedupeFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := Key(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// KeySet returns the set of comparison keys for values, skipping blanks.
func KeySet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if key := Key(v); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
