package giveaway

import (
	"strings"
	"unicode"
)

// NormalizePrefix canonicalizes a configured command prefix the same way
// incoming messages are normalized, so matching stays consistent.
func NormalizePrefix(prefix string) string {
	return strings.ReplaceAll(strings.ToLower(prefix), " ", "")
}

// ParseCommand extracts the entry username from a raw chat line. The text is
// case-folded with all spaces removed; if it starts with the prefix, the
// remainder (capitalized for display) is the username. An empty remainder is
// not a valid command.
func ParseCommand(text, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	norm := strings.ReplaceAll(strings.ToLower(text), " ", "")
	if !strings.HasPrefix(norm, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(norm, prefix)
	if rest == "" {
		return "", false
	}
	return capitalize(rest), true
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
