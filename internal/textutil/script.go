package textutil

import (
	"strings"
	"unicode"
)

// IsLatin reports whether name, once trimmed, consists only of ASCII letters,
// ASCII digits, whitespace, and the punctuation - ' . , ( ) & ! ?.
// Accented Latin letters are deliberately rejected. Blank input is not Latin.
func IsLatin(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !isLatinRune(r) {
			return false
		}
	}
	return true
}

func isLatinRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case unicode.IsSpace(r):
		return true
	}
	switch r {
	case '-', '\'', '.', ',', '(', ')', '&', '!', '?':
		return true
	}
	return false
}
