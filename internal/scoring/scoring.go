// Package scoring assigns relevance scores to filtered records and produces
// the final ordering. Name-match bonuses dominate the score; nutrient goals
// contribute small normalized nudges but take over the sort order entirely
// when present.
package scoring

import (
	"sort"
	"strings"

	"github.com/nutrifind/go-food-search/model"
)

const baseScore = 100

// Whole-raw-query name-match bonuses, strictly decreasing by match quality.
const (
	rawExactBonus          = 4000
	rawPrefixBoundaryBonus = 3500
	rawPrefixBonus         = 3000
	rawSubstringBonus      = 1500
)

// Multi-token cleaned-query bonuses.
const (
	cleanedExactBonus          = 3000
	cleanedPrefixBoundaryBonus = 2500
	cleanedSubstringBonus      = 2000
	cleanedPrefixBonus         = 500
)

// Per-token bonuses and the noise penalty per record token.
const (
	tokenBoundaryBonus  = 150
	tokenSubstringBonus = 75
	tokenCountPenalty   = 5
)

// Scored pairs a record with its computed score.
type Scored struct {
	Record *model.CompactRecord
	Score  float64
}

// Score computes the relevance score of one record for the intent.
// nutrientMax holds the index-wide per-100g maxima used to normalize goal
// contributions.
func Score(rec *model.CompactRecord, intent *model.SearchIntent, nutrientMax map[model.Nutrient]float64) float64 {
	score := float64(baseScore)
	name := strings.TrimSpace(rec.PaddedName)

	raw := strings.ToLower(strings.TrimSpace(intent.RawQuery))
	if len(raw) >= 2 && len(intent.TextTokens) <= 1 {
		switch {
		case name == raw:
			score += rawExactBonus
		case strings.HasPrefix(name, raw+" "):
			score += rawPrefixBoundaryBonus
		case strings.HasPrefix(name, raw):
			score += rawPrefixBonus
		case strings.Contains(rec.PaddedName, raw):
			score += rawSubstringBonus
		}
	}

	if len(intent.TextTokens) >= 2 {
		cleaned := intent.CleanedQuery
		switch {
		case name == cleaned:
			score += cleanedExactBonus
		case strings.HasPrefix(name, cleaned+" "):
			score += cleanedPrefixBoundaryBonus
		case strings.Contains(rec.PaddedName, " "+cleaned+" "):
			score += cleanedSubstringBonus
		case strings.HasPrefix(name, cleaned):
			score += cleanedPrefixBonus
		}

		matched := 0
		for _, tok := range intent.TextTokens {
			switch {
			case strings.Contains(rec.PaddedName, " "+tok+" ") || rec.HasToken(tok):
				score += tokenBoundaryBonus
				matched++
			case strings.Contains(rec.PaddedName, tok):
				score += tokenSubstringBonus
				matched++
			}
		}
		// The penalty favors concise names over noisy long ones, but only
		// when the record matched at all.
		if matched > 0 {
			score -= float64(tokenCountPenalty * len(rec.Tokens))
		}
	}

	weight := 1.0
	for _, goal := range intent.Goals {
		max := nutrientMax[goal.Nutrient]
		if max > 0 {
			norm := rec.Density(goal.Nutrient) / max
			if norm > 1 {
				norm = 1
			} else if norm < 0 {
				norm = 0
			}
			if goal.Constraint.FavorsLow() {
				norm = 1 - norm
			}
			score += norm * weight
		}
		weight /= 2
	}

	return score
}

// Rank scores and sorts the records for the intent, returning them in final
// display order. cancelled is polled every stride records during scoring; a
// true return abandons the run and the second return is false.
func Rank(records []*model.CompactRecord, intent *model.SearchIntent, nutrientMax map[model.Nutrient]float64,
	cancelled func() bool, stride int) ([]Scored, bool) {

	if stride <= 0 {
		stride = 500
	}
	out := make([]Scored, len(records))
	for i, rec := range records {
		if i%stride == 0 && cancelled != nil && cancelled() {
			return nil, false
		}
		out[i] = Scored{Record: rec, Score: Score(rec, intent, nutrientMax)}
	}
	if cancelled != nil && cancelled() {
		return nil, false
	}

	less := lessFunc(intent)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, true
}

// lessFunc picks the ordering for the intent: pH direction first when a pH
// constraint is active, then the first nutrient goal's raw value, then score,
// then name.
func lessFunc(intent *model.SearchIntent) func(a, b Scored) bool {
	var goal *model.NutrientGoal
	if len(intent.Goals) > 0 {
		goal = &intent.Goals[0]
	}

	byGoal := func(a, b Scored) (less, done bool) {
		av := a.Record.Density(goal.Nutrient)
		bv := b.Record.Density(goal.Nutrient)
		if av == bv {
			return false, false
		}
		if goal.Constraint.FavorsLow() {
			return av < bv, true
		}
		return av > bv, true
	}

	byScoreThenName := func(a, b Scored) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Record.Name < b.Record.Name
	}

	if intent.PH != nil {
		phAscending := intent.PH.FavorsLow()
		return func(a, b Scored) bool {
			if a.Record.PH != b.Record.PH {
				if phAscending {
					return a.Record.PH < b.Record.PH
				}
				return a.Record.PH > b.Record.PH
			}
			if goal != nil {
				if less, done := byGoal(a, b); done {
					return less
				}
			}
			return byScoreThenName(a, b)
		}
	}

	if goal != nil {
		return func(a, b Scored) bool {
			if less, done := byGoal(a, b); done {
				return less
			}
			return byScoreThenName(a, b)
		}
	}

	return byScoreThenName
}
