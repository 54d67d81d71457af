package capsule

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// TruncationMarker is appended to text cut at a length ceiling.
const TruncationMarker = "..."

// Normalize trims, lowercases, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.ToLower(CollapseWhitespace(s))
}

// CollapseWhitespace trims s and collapses whitespace runs to single spaces.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts text to at most max runes, appending TruncationMarker when cut.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + TruncationMarker
}
