package model

import "strings"

// CompactRecord is the lightweight, read-only projection of a food, recipe
// or menu used during search. Instances are created by the snapshot builder
// and must never be mutated afterwards; concurrent searches share them.
type CompactRecord struct {
	ID         uint32
	Name       string
	PaddedName string // lower-cased, space-padded variant for substring checks
	Tokens     map[string]struct{}
	Diets      map[string]struct{} // canonical diet names the record fits

	IsRecipe   bool
	IsMenu     bool
	IsFavorite bool

	MinAgeMonths    int
	ReferenceWeight float64 // grams the nutrient values are expressed per
	PH              float64 // 0 means unknown

	Nutrients map[Nutrient]float64 // per reference weight
}

// PadName returns the lower-cased name wrapped in single spaces, the form
// stored in PaddedName. Padding lets word-boundary checks use plain
// substring matching (" milk " matches "oat milk" but not "milkshake").
func PadName(name string) string {
	return " " + strings.ToLower(strings.TrimSpace(name)) + " "
}

// Density returns the per-100g value for n. Records without a reference
// weight are treated as already expressed per 100 g.
func (r *CompactRecord) Density(n Nutrient) float64 {
	v := r.Nutrients[n]
	if r.ReferenceWeight <= 0 || r.ReferenceWeight == 100 {
		return v
	}
	return v * 100 / r.ReferenceWeight
}

// HasToken reports whether tok is one of the record's search tokens.
func (r *CompactRecord) HasToken(tok string) bool {
	_, ok := r.Tokens[tok]
	return ok
}

// FitsDiet reports whether the record is marked as fitting the canonical
// diet name.
func (r *CompactRecord) FitsDiet(diet string) bool {
	_, ok := r.Diets[diet]
	return ok
}

// FullRecord is the display-side object resolved through the RecordFetch
// boundary once a search has produced ids.
type FullRecord struct {
	ID          uint32   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Diets       []string `json:"diets,omitempty"`

	IsRecipe   bool `json:"is_recipe"`
	IsMenu     bool `json:"is_menu"`
	IsFavorite bool `json:"is_favorite"`

	MinAgeMonths    int     `json:"min_age_months,omitempty"`
	ReferenceWeight float64 `json:"reference_weight,omitempty"`
	PH              float64 `json:"ph,omitempty"`

	Nutrients map[Nutrient]float64 `json:"nutrients,omitempty"`
}
