// Package keywords masks banned keywords out of display text. Masking is a
// presentation concern only; stored drafts and published listings keep the
// original text.
package keywords

import (
	"strings"
	"unicode"
)

// Mask replaces every case-insensitive occurrence of each keyword in text
// with one asterisk per keyword rune. Empty keywords are ignored. Matching
// walks runes rather than bytes: lowercasing can change a rune's encoded
// length (Turkish dotted I), so byte offsets into a lowered copy would not
// line up with the original text.
func Mask(text string, banned []string) string {
	if text == "" || len(banned) == 0 {
		return text
	}

	runes := []rune(text)
	masked := false
	for _, kw := range banned {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if maskOne(runes, []rune(kw)) {
			masked = true
		}
	}

	if !masked {
		return text
	}
	return string(runes)
}

// maskOne overwrites each fold-equal occurrence of keyword in runes with
// asterisks, in place. Reports whether anything was masked.
func maskOne(runes, keyword []rune) bool {
	masked := false
	for i := 0; i+len(keyword) <= len(runes); {
		if !foldEqual(runes[i:i+len(keyword)], keyword) {
			i++
			continue
		}
		for j := i; j < i+len(keyword); j++ {
			runes[j] = '*'
		}
		i += len(keyword)
		masked = true
	}
	return masked
}

func foldEqual(candidate, keyword []rune) bool {
	for i, r := range keyword {
		if unicode.ToLower(candidate[i]) != unicode.ToLower(r) {
			return false
		}
	}
	return true
}
