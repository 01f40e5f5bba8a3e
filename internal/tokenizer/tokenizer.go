package tokenizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// nonAlphanumericRegex matches sequences of characters that separate tokens.
// Unicode letters are kept so accented ingredient names tokenize intact.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// whitespaceRegex collapses runs of whitespace for query signatures.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Tokenize converts a string into a slice of lower-cased tokens, splitting
// on any non-letter, non-digit characters.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)
	split := nonAlphanumericRegex.Split(lowerText, -1)

	tokens := make([]string, 0, len(split))
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// Clean lower-cases text and collapses internal whitespace. Used both for
// query signatures and for substring matching against padded names.
func Clean(text string) string {
	return whitespaceRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// StripPunct trims surrounding punctuation from a word, leaving interior
// characters alone ("milk," -> "milk", "gluten-free" unchanged).
func StripPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// IsNumeric reports whether s parses as a plain number.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ContainsNonLatin reports whether text contains a letter outside the Latin
// script. Such queries bypass token retrieval and match names by substring.
func ContainsNonLatin(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}
