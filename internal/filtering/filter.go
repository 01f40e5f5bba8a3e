// Package filtering runs the sequential exclusion checks that reduce the
// candidate set to records eligible for scoring. Checks are cheap-first and
// any failing check drops the record immediately.
package filtering

import (
	"strings"

	"github.com/nutrifind/go-food-search/index"
	"github.com/nutrifind/go-food-search/internal/tokenizer"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

// Params is everything one filter run needs beyond the candidates.
type Params struct {
	Intent      *model.SearchIntent
	Mode        model.SearchMode
	Toggles     model.Toggles
	ExcludedIDs index.IDSet

	// Cancelled is polled at a fixed stride; a true return abandons the run.
	Cancelled func() bool
	// Stride is the number of records between cancellation polls.
	Stride int
}

// Filter evaluates candidates against a resolved intent.
type Filter struct {
	kb services.KnowledgeBase
}

// New creates a filter.
func New(kb services.KnowledgeBase) *Filter {
	return &Filter{kb: kb}
}

// Apply runs the exclusion checks over candidates in order and returns the
// survivors. The second return is false when the run was cancelled; partial
// output must then be discarded.
func (f *Filter) Apply(snap *index.Snapshot, candidates []uint32, p Params) ([]*model.CompactRecord, bool) {
	rawLower := strings.ToLower(strings.TrimSpace(p.Intent.RawQuery))
	nonLatin := tokenizer.ContainsNonLatin(p.Intent.RawQuery)
	stride := p.Stride
	if stride <= 0 {
		stride = 500
	}

	out := make([]*model.CompactRecord, 0, len(candidates))
	for i, id := range candidates {
		if i%stride == 0 && p.Cancelled != nil && p.Cancelled() {
			return nil, false
		}
		rec, ok := snap.Record(id)
		if !ok {
			continue
		}
		if f.keep(rec, p, rawLower, nonLatin) {
			out = append(out, rec)
		}
	}
	return out, true
}

// keep runs every exclusion check against one record.
func (f *Filter) keep(rec *model.CompactRecord, p Params, rawLower string, nonLatin bool) bool {
	in := p.Intent

	// Non-Latin queries bypass token logic entirely: only a literal
	// substring match against the display name counts.
	if nonLatin && !strings.Contains(rec.PaddedName, rawLower) {
		return false
	}

	if p.ExcludedIDs.Has(rec.ID) {
		return false
	}

	switch p.Mode {
	case model.ModeRecipes:
		if !rec.IsRecipe {
			return false
		}
	case model.ModeMenus:
		if !rec.IsMenu {
			return false
		}
	}

	if p.Toggles.FavoritesOnly && !rec.IsFavorite {
		return false
	}
	if p.Toggles.RecipesOnly && !rec.IsRecipe {
		return false
	}
	if p.Toggles.MenusOnly && !rec.IsMenu {
		return false
	}

	for _, tok := range in.NegativeTokens {
		if rec.HasToken(tok) {
			return false
		}
	}

	for _, ingredient := range in.NegativeIngredients {
		if f.mentionsIngredient(rec, ingredient) && !nameAdvertisesExclusion(rec.PaddedName, ingredient) {
			return false
		}
	}

	for _, diet := range in.ExcludedDiets {
		if rec.FitsDiet(diet) {
			return false
		}
	}
	for _, diet := range in.RequiredDiets {
		if !rec.FitsDiet(diet) {
			return false
		}
	}
	if in.DietFilter != "" && !rec.FitsDiet(in.DietFilter) {
		return false
	}

	if in.ConsumerAgeMonths > 0 && rec.MinAgeMonths > in.ConsumerAgeMonths {
		return false
	}

	if in.ExcludeAllAllergens {
		for _, allergen := range f.kb.Allergens() {
			if f.matchesAllergen(rec, allergen) {
				return false
			}
		}
	} else {
		for _, allergen := range in.ExcludedAllergens {
			if f.matchesAllergen(rec, allergen) {
				return false
			}
		}
	}

	if in.PH != nil {
		// pH 0 means unknown; any active pH constraint rejects it, the
		// reorder-only kinds included.
		if rec.PH == 0 {
			return false
		}
		if !in.PH.MatchesPH(rec.PH) {
			return false
		}
	}

	for _, goal := range in.Goals {
		v := rec.Density(goal.Nutrient)
		c := goal.Constraint
		switch {
		case c.IsThreshold():
			// Zero is treated as data absent: a true absence must not
			// satisfy a specific numeric bound.
			if v == 0 || !c.Matches(v) {
				return false
			}
		case c.Kind == model.ConstraintHigh:
			if v <= 0 {
				return false
			}
		}
		// Low, Lowest and Highest accept any value, zero included.
	}

	return true
}

// mentionsIngredient reports whether the record carries the ingredient as a
// token or as a word inside its display name.
func (f *Filter) mentionsIngredient(rec *model.CompactRecord, ingredient string) bool {
	if rec.HasToken(ingredient) {
		return true
	}
	return strings.Contains(rec.PaddedName, " "+ingredient+" ") ||
		strings.Contains(rec.PaddedName, " "+ingredient+"-") ||
		strings.Contains(rec.PaddedName, "-"+ingredient+" ")
}

// nameAdvertisesExclusion reports whether the name itself states the absence
// of the ingredient ("tomato-free soup", "pizza without cheese"), in which
// case the mention must not count against the record.
func nameAdvertisesExclusion(paddedName, ingredient string) bool {
	phrases := []string{
		ingredient + "-free",
		ingredient + " free",
		"without " + ingredient,
		"excluding " + ingredient,
		"no " + ingredient,
	}
	for _, phrase := range phrases {
		if strings.Contains(paddedName, phrase) {
			return true
		}
	}
	return false
}

// matchesAllergen reports whether any keyword of the allergen category
// appears in the record's tokens or name.
func (f *Filter) matchesAllergen(rec *model.CompactRecord, allergen string) bool {
	for _, kw := range f.kb.AllergenKeywords(allergen) {
		if rec.HasToken(kw) || strings.Contains(rec.PaddedName, " "+kw+" ") {
			return true
		}
	}
	return false
}
