package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to use as a single path element on
// Linux, macOS and Windows. Separators and colons become dashes, so do
// asterisks; quotes, wildcards, redirection characters and control
// characters are dropped.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(strings.Map(safeRune, name))
}

func safeRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|':
		return -1
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
