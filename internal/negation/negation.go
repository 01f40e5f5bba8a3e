// Package negation pulls exclusion intent out of the token stream: a marker
// word followed by a recognizable term ("without cheese", "no nuts") becomes
// a negative ingredient or token instead of positive search text.
package negation

import (
	"strings"

	"github.com/nutrifind/go-food-search/internal/tokenizer"
)

// markers are the words that negate their immediate successor.
var markers = map[string]struct{}{
	"no":        {},
	"without":   {},
	"excluding": {},
	"exclude":   {},
	"except":    {},
	"minus":     {},
}

// IsMarker reports whether word negates the word after it.
func IsMarker(word string) bool {
	_, ok := markers[word]
	return ok
}

// KnowledgeBase is the ingredient and allergen knowledge negation relies on.
type KnowledgeBase interface {
	IsKnownIngredient(word string) bool
	AllergenForIngredient(word string) (string, bool)
}

// Result partitions a token stream into positive text and exclusions.
type Result struct {
	// Positive is the token stream with accepted marker+candidate pairs
	// removed.
	Positive []string
	// Tokens are negated words matched against record tokens.
	Tokens []string
	// Ingredients are negated words recognized as ingredients, matched
	// against record names and ingredient lists.
	Ingredients []string
	// Allergens are the allergen categories implied by negated ingredients.
	Allergens []string
}

// Extract scans tokens for marker+candidate pairs. A candidate is accepted
// only when it resolves to a known ingredient or an indexed vocabulary
// token; otherwise the marker and candidate stay in the positive stream
// untouched. inVocabulary may be nil when no snapshot is available.
func Extract(kb KnowledgeBase, tokens []string, inVocabulary func(string) bool) Result {
	res := Result{Positive: make([]string, 0, len(tokens))}
	seenAllergens := make(map[string]struct{})

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !IsMarker(tok) || i+1 >= len(tokens) {
			res.Positive = append(res.Positive, tok)
			continue
		}

		candidate := tokenizer.StripPunct(tokens[i+1])
		candidate = singularize(kb, candidate, inVocabulary)

		switch {
		case kb.IsKnownIngredient(candidate):
			res.Ingredients = append(res.Ingredients, candidate)
			if allergen, ok := kb.AllergenForIngredient(candidate); ok {
				if _, dup := seenAllergens[allergen]; !dup {
					seenAllergens[allergen] = struct{}{}
					res.Allergens = append(res.Allergens, allergen)
				}
			}
			i++
		case inVocabulary != nil && inVocabulary(candidate):
			res.Tokens = append(res.Tokens, candidate)
			i++
		default:
			// Nothing recognizable to negate; keep the marker as text.
			res.Positive = append(res.Positive, tok)
		}
	}
	return res
}

// singularize drops a plural "s" when the singular form is the one that is
// actually known ("nuts" -> "nut").
func singularize(kb KnowledgeBase, word string, inVocabulary func(string) bool) string {
	if len(word) < 3 || !strings.HasSuffix(word, "s") {
		return word
	}
	if kb.IsKnownIngredient(word) || (inVocabulary != nil && inVocabulary(word)) {
		return word
	}
	singular := strings.TrimSuffix(word, "s")
	if kb.IsKnownIngredient(singular) || (inVocabulary != nil && inVocabulary(singular)) {
		return singular
	}
	return word
}
