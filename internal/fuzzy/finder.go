package fuzzy

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 1024

// Finder resolves near-miss tokens against a fixed vocabulary. Lookups are
// cached because interactive retyping hits the same prefixes over and over.
type Finder struct {
	vocabulary []string
	cache      *lru.Cache[string, []string]
}

// NewFinder creates a Finder over a copy of vocabulary.
func NewFinder(vocabulary []string) *Finder {
	words := make([]string, len(vocabulary))
	copy(words, vocabulary)

	// Only errors on non-positive size.
	cache, _ := lru.New[string, []string](defaultCacheSize)

	return &Finder{vocabulary: words, cache: cache}
}

// MaxDistanceForLength returns the edit-distance budget for a token: exact
// only below 4 characters, one edit for 4-6, two beyond that.
func MaxDistanceForLength(tokenLen int) int {
	switch {
	case tokenLen < 4:
		return 0
	case tokenLen <= 6:
		return 1
	default:
		return 2
	}
}

// WithinDistance returns vocabulary words within maxDistance edits of term,
// considering only words within ±2 length of the term. Results are sorted by
// distance, then lexicographically, so callers get stable candidate order.
func (f *Finder) WithinDistance(term string, maxDistance int) []string {
	if term == "" || maxDistance <= 0 || len(f.vocabulary) == 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("%s\x00%d", term, maxDistance)
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached
	}

	termLen := len([]rune(term))

	type match struct {
		word string
		dist int
	}
	var matches []match

	for _, word := range f.vocabulary {
		if word == term {
			continue
		}
		wordLen := len([]rune(word))
		lengthDiff := wordLen - termLen
		if lengthDiff < 0 {
			lengthDiff = -lengthDiff
		}
		if lengthDiff > 2 || lengthDiff > maxDistance {
			continue
		}

		dist := DamerauLevenshteinDistanceWithLimit(term, word, maxDistance)
		if dist > 0 && dist <= maxDistance {
			matches = append(matches, match{word: word, dist: dist})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].word < matches[j].word
	})

	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.word
	}

	f.cache.Add(cacheKey, words)
	return words
}

// PrefixMatches returns vocabulary words starting with prefix, capped at
// limit, sorted shortest first then lexicographically.
func (f *Finder) PrefixMatches(prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return nil
	}

	cacheKey := fmt.Sprintf("p\x00%s\x00%d", prefix, limit)
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached
	}

	var words []string
	for _, word := range f.vocabulary {
		if len(word) >= len(prefix) && word[:len(prefix)] == prefix {
			words = append(words, word)
		}
	}

	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) < len(words[j])
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}

	f.cache.Add(cacheKey, words)
	return words
}
