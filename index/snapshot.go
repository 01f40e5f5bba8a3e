// Package index holds the immutable search snapshot and the builder that
// produces it. A snapshot is published wholesale: rebuilding yields a new
// value with a higher version, never an in-place mutation, so in-flight
// searches keep reading a consistent view without locks.
package index

import "github.com/nutrifind/go-food-search/model"

// Snapshot is the read-only view of the record corpus a search runs against.
type Snapshot struct {
	Version uint64

	Records []model.CompactRecord
	byID    map[uint32]int // id -> index into Records

	// Inverted maps a normalized token to the ids of records carrying it.
	Inverted map[string]IDSet

	// Vocabulary is every distinct token across all records, sorted.
	Vocabulary []string

	// NutrientMax holds the maximum per-100g density observed per nutrient,
	// used to normalize goal contributions during scoring.
	NutrientMax map[model.Nutrient]float64

	// NutrientRankings holds, per nutrient, record ids sorted by descending
	// density. Seeds goal-only searches without a full scan.
	NutrientRankings map[model.Nutrient][]uint32

	// KnownDiets is the set of canonical diet names seen in the corpus.
	KnownDiets map[string]struct{}
}

// Record returns the compact record for id.
func (s *Snapshot) Record(id uint32) (*model.CompactRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.Records[i], true
}

// Postings returns the id set for a token, or nil when the token is absent.
func (s *Snapshot) Postings(token string) IDSet {
	return s.Inverted[token]
}

// AllIDs returns every record id. The slice is freshly allocated.
func (s *Snapshot) AllIDs() []uint32 {
	ids := make([]uint32, len(s.Records))
	for i := range s.Records {
		ids[i] = s.Records[i].ID
	}
	return ids
}

// Empty reports whether the snapshot has no records.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Records) == 0
}
