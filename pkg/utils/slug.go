package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses every run of whitespace or
// punctuation into a single hyphen: "University of California, Berkeley"
// becomes "university-of-california-berkeley".
func Slugify(name string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
