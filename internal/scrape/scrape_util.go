package scrape

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// normalizeWhitespace collapses runs of whitespace (including NBSP) into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, " ", " ")), " ")
}

// containsFold reports whether needle occurs in text ignoring case.
func containsFold(text, needle string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(needle))
}

// excerpt caps text at maxChars runes. Text that fits is returned unchanged.
// Otherwise the window starts at the beginning when the first occurrence of
// keyword fits there, and is centred on that occurrence when it does not, so the
// keyword always survives the cut. Cut sides are marked with an ellipsis.
func excerpt(text, keyword string, maxChars int) (string, bool) {
	total := utf8.RuneCountInString(text)
	if maxChars <= 0 || total <= maxChars {
		return text, false
	}

	runes := []rune(text)
	lowerText := strings.ToLower(text)

	start := 0
	if idx := strings.Index(lowerText, strings.ToLower(keyword)); idx >= 0 {
		matchStart := utf8.RuneCountInString(lowerText[:idx])
		matchLen := utf8.RuneCountInString(keyword)
		if matchLen > maxChars {
			maxChars = matchLen
		}
		if matchStart+matchLen > maxChars {
			start = matchStart - (maxChars-matchLen)/2
		}
	}

	end := start + maxChars
	if end > total {
		end = total
		start = end - maxChars
	}

	snippet := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < total {
		snippet = snippet + ellipsis
	}
	return snippet, true
}
