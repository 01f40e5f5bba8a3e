// Package services defines the boundary interfaces and DTOs between the
// search engine, its external collaborators (knowledge base, record
// persistence, embeddings) and its callers.
package services

import "github.com/nutrifind/go-food-search/model"

// KnowledgeBase supplies the domain vocabulary the engine consumes: nutrient
// name resolution, canonical units, diet and allergen mappings. Built
// externally; read-only to the engine.
type KnowledgeBase interface {
	BestNutrientMatch(text string) (model.Nutrient, bool)
	NutrientByPrefix(prefix string) (model.Nutrient, bool)
	DefaultUnit(n model.Nutrient) string
	CanonicalDiet(text string) (string, bool)
	KnownDiets() []string
	AllergenForIngredient(name string) (string, bool)
	AllergenKeywords(allergen string) []string
	Allergens() []string
	IsKnownIngredient(word string) bool
	IsSystemKeywordPrefix(token string) bool
}

// Embeddings is the pre-trained word-embedding lookup used by the semantic
// retrieval tier. Implementations must restrict neighbors to vocabulary
// members. May be nil-backed; the tier is optional.
type Embeddings interface {
	Neighbors(token string, k int) []string
}

// RecordFetcher resolves search output ids into full display records,
// preserving the given id order. Missing ids are skipped, not errors.
type RecordFetcher interface {
	Fetch(ids []uint32) ([]model.FullRecord, error)
}

// SearchRequest carries a query plus the structured UI filters that
// accompany it. UI-imposed nutrient goals take priority over goals parsed
// from the query text.
type SearchRequest struct {
	Query   string           `json:"query"`
	Mode    model.SearchMode `json:"mode,omitempty"`
	Toggles model.Toggles    `json:"toggles,omitempty"`
	Profile model.Profile    `json:"profile,omitempty"`

	Goals               []model.NutrientGoal `json:"goals,omitempty"`
	DietFilter          string               `json:"diet_filter,omitempty"`
	ExcludedDiets       []string             `json:"excluded_diets,omitempty"`
	ExcludedAllergens   []string             `json:"excluded_allergens,omitempty"`
	ExcludeAllAllergens bool                 `json:"exclude_all_allergens,omitempty"`
	ConsumerAgeMonths   int                  `json:"consumer_age_months,omitempty"`

	ExcludedIDs []uint32 `json:"excluded_ids,omitempty"`

	// PHSort overrides the pH ordering direction: "asc", "desc" or empty.
	PHSort string `json:"ph_sort,omitempty"`
}

// SearchResult is the published outcome of a completed resolution: the full
// ordered id list plus the display context. Pages are cut from IDs without
// re-running the pipeline.
type SearchResult struct {
	QueryID   string              `json:"query_id"`
	Signature string              `json:"signature"`
	IDs       []uint32            `json:"ids"`
	Total     int                 `json:"total"`
	Context   model.SearchContext `json:"context"`
	Took      int64               `json:"took"` // milliseconds
}

// Page is one slice of a completed result list with its records resolved.
type Page struct {
	Records  []model.FullRecord `json:"records"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int                `json:"total"`
	HasMore  bool               `json:"has_more"`
}

// Searcher is the surface the engine exposes to interactive callers.
type Searcher interface {
	Search(req SearchRequest)
	Result() (SearchResult, bool)
	LoadPage(page int) (Page, error)
}

// CompactSearcher is the synchronous bulk surface for non-interactive
// callers (batch jobs, generative tooling).
type CompactSearcher interface {
	SearchCompact(query string, mode model.SearchMode, limit int) []model.CompactRecord
	SearchWithRequiredKeywords(query string, limit int, requiredHeadwords []string) []uint32
}
