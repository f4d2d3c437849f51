package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Len returns the length of s in runes
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// ContainsAny reports whether s contains one of the phrases. Matching is case-sensitive,
// the phrases are copied verbatim from the webmail UI.
func ContainsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Normalize trims s and converts it to Unicode NFC so equal texts compare equal
// whatever composition the page used.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
