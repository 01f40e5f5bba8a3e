// Package retrieval turns the positive token stream into a candidate id set
// using the inverted index, widening tokens that miss through prefix,
// semantic and edit-distance tiers before giving up on them.
package retrieval

import (
	"strings"

	"github.com/nutrifind/go-food-search/config"
	"github.com/nutrifind/go-food-search/index"
	"github.com/nutrifind/go-food-search/internal/fuzzy"
	"github.com/nutrifind/go-food-search/internal/tokenizer"
	"github.com/nutrifind/go-food-search/internal/units"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

// Sources bundles the per-snapshot lookup structures retrieval reads. All of
// them are immutable for the duration of a search.
type Sources struct {
	Snapshot   *index.Snapshot
	Finder     *fuzzy.Finder      // prefix and edit-distance lookups over the vocabulary
	Embeddings services.Embeddings // optional semantic tier
}

// Result is the retrieval outcome. A nil IDs set means the query imposed no
// text constraint at all and the caller must seed candidates another way;
// an empty non-nil set means the text constraint matched nothing.
type Result struct {
	IDs index.IDSet

	// ImplicitGoals are nutrient goals discovered by reinterpreting
	// unmatched tokens as truncated nutrient names ("prot" -> high protein).
	ImplicitGoals []model.NutrientGoal
}

// Retriever executes candidate retrieval against snapshot sources.
type Retriever struct {
	cfg *config.Settings
	kb  services.KnowledgeBase
}

// New creates a retriever.
func New(cfg *config.Settings, kb services.KnowledgeBase) *Retriever {
	return &Retriever{cfg: cfg, kb: kb}
}

// Retrieve resolves the intent's positive tokens to a candidate set.
// Distinct tokens intersect; the loop stops early once the running set is
// empty.
func (r *Retriever) Retrieve(src Sources, intent *model.SearchIntent) Result {
	tokens := r.orderTokens(intent.TextTokens)

	var res Result
	var current index.IDSet
	touched := false

	fuzzyMode := len(tokens) >= r.cfg.MinTokensForFuzzy

	for _, tok := range tokens {
		if tokenizer.IsNumeric(tok) || units.IsUnitToken(tok) {
			continue
		}

		matches := src.Snapshot.Postings(tok)
		if len(matches) == 0 {
			if r.isSoftToken(tok) && current != nil {
				// A short keyword-ish token with no postings is advisory
				// only; intersecting it would wipe an established set.
				continue
			}
			matches = r.expand(src, tok, fuzzyMode)
		}

		if len(matches) == 0 && len(tok) >= 3 {
			if n, ok := r.kb.NutrientByPrefix(tok); ok {
				res.ImplicitGoals = append(res.ImplicitGoals,
					model.NutrientGoal{Nutrient: n, Constraint: model.High()})
				continue
			}
		}

		touched = true
		if current == nil {
			current = matches.Clone()
		} else {
			current = current.Intersect(matches)
		}
		if len(current) == 0 {
			break
		}
	}

	// A purely numeric query matches codes embedded in display names.
	if numeric := strings.TrimSpace(strings.ToLower(intent.RawQuery)); numeric != "" && tokenizer.IsNumeric(numeric) {
		touched = true
		if current == nil {
			current = make(index.IDSet)
		}
		for i := range src.Snapshot.Records {
			rec := &src.Snapshot.Records[i]
			if strings.Contains(rec.PaddedName, numeric) {
				current.Add(rec.ID)
			}
		}
	}

	if !touched {
		return res // nil IDs: no text constraint
	}
	if current == nil {
		current = make(index.IDSet)
	}
	res.IDs = current
	return res
}

// orderTokens moves command-like tokens to the back so they constrain last.
func (r *Retriever) orderTokens(tokens []string) []string {
	ordered := make([]string, 0, len(tokens))
	var deferred []string
	for _, tok := range tokens {
		if r.isSoftToken(tok) {
			deferred = append(deferred, tok)
		} else {
			ordered = append(ordered, tok)
		}
	}
	return append(ordered, deferred...)
}

// isSoftToken reports whether a token looks like a command or filter keyword
// rather than food text.
func (r *Retriever) isSoftToken(tok string) bool {
	if len(tok) <= 2 && !r.kb.IsKnownIngredient(tok) {
		return true
	}
	return r.kb.IsSystemKeywordPrefix(tok)
}

// expand widens an unmatched token through the fallback tiers in order:
// prefix expansion, semantic neighbors, edit distance. The union of postings
// of all expansion words becomes the token's match set.
func (r *Retriever) expand(src Sources, tok string, fuzzyMode bool) index.IDSet {
	out := make(index.IDSet)

	limit := r.cfg.PrefixExpansionCap(len(tok))
	for _, word := range src.Finder.PrefixMatches(tok, limit) {
		out.Union(src.Snapshot.Postings(word))
	}
	if len(out) > 0 {
		return out
	}

	if fuzzyMode && src.Embeddings != nil && len(tok) >= r.cfg.MinTokenLenForSemantic {
		for _, word := range src.Embeddings.Neighbors(tok, r.cfg.SemanticNeighbors) {
			out.Union(src.Snapshot.Postings(word))
		}
		if len(out) > 0 {
			return out
		}
	}

	maxDist := fuzzy.MaxDistanceForLength(len(tok))
	for _, word := range src.Finder.WithinDistance(tok, maxDist) {
		out.Union(src.Snapshot.Postings(word))
	}
	return out
}
