package helpers

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace (tabs, newlines, multiple
// spaces) into single spaces and trims the result. Empty input yields
// an empty string.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// Truncate cuts s to at most max runes and trims trailing whitespace.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(runes[:max]))
}
