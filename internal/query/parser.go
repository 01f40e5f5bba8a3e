// Package query turns a raw search request into a fully resolved
// SearchIntent: numeric constraints, negations, diet keywords, pH and age
// phrases are stripped out of the text and the remainder becomes the
// positive token stream.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nutrifind/go-food-search/internal/constraint"
	"github.com/nutrifind/go-food-search/internal/negation"
	"github.com/nutrifind/go-food-search/internal/tokenizer"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

var (
	phQualBeforeRe = regexp.MustCompile(`\b(lowest|highest|low|high)\s+ph\b`)
	phQualAfterRe  = regexp.MustCompile(`\bph\s+(lowest|highest|low|high)\b`)
	phNumericRe    = regexp.MustCompile(`\bph\s*(>=|<=|>|<|=)\s*(\d+(?:[.,]\d+)?)`)
	ageRe          = regexp.MustCompile(`\b(\d{1,3})\s*months?(?:\s+old)?\b`)
)

// qualitativeMarkers map intensity words to constraints for implicit goals
// like "high protein".
var qualitativeMarkers = map[string]func() model.Constraint{
	"high":    model.High,
	"low":     model.Low,
	"lowest":  model.Lowest,
	"highest": model.Highest,
}

// Parser resolves search requests against a knowledge base.
type Parser struct {
	kb          services.KnowledgeBase
	constraints *constraint.Parser
}

// New creates a query parser.
func New(kb services.KnowledgeBase) *Parser {
	return &Parser{kb: kb, constraints: constraint.New(kb)}
}

// Parse builds the search intent for a request. inVocabulary reports
// membership in the active snapshot's token vocabulary and may be nil.
// Parsing is total: malformed fragments degrade to plain text, never errors.
func (p *Parser) Parse(req services.SearchRequest, inVocabulary func(string) bool) *model.SearchIntent {
	intent := &model.SearchIntent{
		RawQuery:            req.Query,
		DietFilter:          p.canonicalOr(req.DietFilter),
		ExcludeAllAllergens: req.ExcludeAllAllergens,
		ConsumerAgeMonths:   req.ConsumerAgeMonths,
	}
	for _, d := range req.ExcludedDiets {
		if canonical, ok := p.kb.CanonicalDiet(d); ok {
			intent.ExcludedDiets = append(intent.ExcludedDiets, canonical)
		} else {
			intent.ExcludedDiets = append(intent.ExcludedDiets, strings.ToLower(d))
		}
	}
	intent.ExcludedAllergens = append(intent.ExcludedAllergens, req.ExcludedAllergens...)

	// Profile constraints only bind in the consumer-centric modes.
	if req.Mode == model.ModeNutrients || req.Mode == model.ModeMealPlans {
		if intent.ConsumerAgeMonths == 0 {
			intent.ConsumerAgeMonths = req.Profile.ConsumerAgeMonths
		}
		for _, d := range req.Profile.RequiredDiets {
			intent.RequiredDiets = append(intent.RequiredDiets, p.canonicalOr(d))
		}
		intent.ExcludedAllergens = append(intent.ExcludedAllergens, req.Profile.AvoidedAllergens...)
	}

	textGoals, residual := p.constraints.Extract(req.Query)
	residual = p.extractPH(residual, intent)
	residual = p.extractAge(residual, intent)
	if intent.PH == nil {
		switch req.PHSort {
		case "asc":
			c := model.Lowest()
			intent.PH = &c
		case "desc":
			c := model.Highest()
			intent.PH = &c
		}
	}

	tokens := tokenizer.Tokenize(residual)
	tokens = p.extractDiets(tokens, intent)

	neg := negation.Extract(p.kb, tokens, inVocabulary)
	intent.NegativeTokens = neg.Tokens
	intent.NegativeIngredients = neg.Ingredients
	// neg.Allergens stays advisory: funneling it into the allergen filter
	// would re-reject records whose name advertises the exclusion, which the
	// negative-ingredient check deliberately exempts.

	positive, implicitGoals := p.extractImplicitGoals(neg.Positive)
	intent.TextTokens = positive
	intent.CleanedQuery = strings.Join(positive, " ")

	// Priority order: UI goals, then in-text numeric, then implicit keyword
	// goals. Consolidation keeps first-appearance order per nutrient.
	goals := make([]model.NutrientGoal, 0, len(req.Goals)+len(textGoals)+len(implicitGoals))
	goals = append(goals, req.Goals...)
	goals = append(goals, textGoals...)
	goals = append(goals, implicitGoals...)
	intent.Goals = model.ConsolidateGoals(goals)

	return intent
}

func (p *Parser) canonicalOr(diet string) string {
	if diet == "" {
		return ""
	}
	if canonical, ok := p.kb.CanonicalDiet(diet); ok {
		return canonical
	}
	return strings.ToLower(diet)
}

// extractPH consumes pH phrases from the text and records the constraint.
func (p *Parser) extractPH(text string, intent *model.SearchIntent) string {
	setPH := func(c model.Constraint) {
		if intent.PH == nil {
			intent.PH = &c
		}
	}

	if m := phNumericRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64); err == nil {
			switch m[1] {
			case ">=":
				setPH(model.Min(v))
			case "<=":
				setPH(model.Max(v))
			case ">":
				setPH(model.StrictMin(v))
			case "<":
				setPH(model.StrictMax(v))
			case "=":
				setPH(model.RangeOf(v, v))
			}
			text = phNumericRe.ReplaceAllString(text, " ")
		}
	}

	qual := func(word string) {
		switch word {
		case "low":
			setPH(model.Low())
		case "high":
			setPH(model.High())
		case "lowest":
			setPH(model.Lowest())
		case "highest":
			setPH(model.Highest())
		}
	}
	if m := phQualBeforeRe.FindStringSubmatch(text); m != nil {
		qual(m[1])
		text = phQualBeforeRe.ReplaceAllString(text, " ")
	}
	if m := phQualAfterRe.FindStringSubmatch(text); m != nil {
		qual(m[1])
		text = phQualAfterRe.ReplaceAllString(text, " ")
	}
	return text
}

// extractAge consumes an "N months" phrase as the consumer age ceiling. An
// explicit request-level age wins over the text.
func (p *Parser) extractAge(text string, intent *model.SearchIntent) string {
	m := ageRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	if intent.ConsumerAgeMonths == 0 {
		if months, err := strconv.Atoi(m[1]); err == nil && months > 0 {
			intent.ConsumerAgeMonths = months
		}
	}
	return ageRe.ReplaceAllString(text, " ")
}

// extractDiets consumes diet keywords from the token stream. A diet preceded
// by a negation marker becomes an exclusion, otherwise a requirement.
// Adjacent pairs like "gluten free" are tried joined first.
func (p *Parser) extractDiets(tokens []string, intent *model.SearchIntent) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		negated := len(out) > 0 && negation.IsMarker(out[len(out)-1])

		if i+1 < len(tokens) {
			if diet, ok := p.kb.CanonicalDiet(tokens[i] + "-" + tokens[i+1]); ok {
				out = p.recordDiet(out, intent, diet, negated)
				i++
				continue
			}
		}
		if diet, ok := p.kb.CanonicalDiet(tokens[i]); ok {
			out = p.recordDiet(out, intent, diet, negated)
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// recordDiet stores a diet constraint, dropping the marker token when the
// diet was negated.
func (p *Parser) recordDiet(out []string, intent *model.SearchIntent, diet string, negated bool) []string {
	if negated {
		out = out[:len(out)-1]
		intent.ExcludedDiets = appendUnique(intent.ExcludedDiets, diet)
	} else {
		intent.RequiredDiets = appendUnique(intent.RequiredDiets, diet)
	}
	return out
}

// extractImplicitGoals consumes "high protein" style pairs from the positive
// token stream.
func (p *Parser) extractImplicitGoals(tokens []string) ([]string, []model.NutrientGoal) {
	out := make([]string, 0, len(tokens))
	var goals []model.NutrientGoal
	for i := 0; i < len(tokens); i++ {
		mk, isMarker := qualitativeMarkers[tokens[i]]
		if !isMarker || i+1 >= len(tokens) {
			out = append(out, tokens[i])
			continue
		}
		n, ok := p.kb.BestNutrientMatch(tokens[i+1])
		if !ok {
			out = append(out, tokens[i])
			continue
		}
		goals = append(goals, model.NutrientGoal{Nutrient: n, Constraint: mk()})
		i++
	}
	return out, goals
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range dst {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
