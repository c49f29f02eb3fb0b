package reader

import "unicode/utf8"

// DefaultMaxChars bounds the page text handed to the model.
const DefaultMaxChars = 8000

// Truncate keeps at most maxChars characters from the start of text.
//
// Characters are runes, so a cut never splits a UTF-8 sequence. No attempt is
// made to respect word or sentence boundaries. maxChars <= 0 means DefaultMaxChars.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}

// CharCount returns the number of characters Truncate measures.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}
