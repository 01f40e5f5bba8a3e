// Package search is the orchestrator: it owns the published snapshot, wires
// parsing, retrieval, filtering and scoring together, and exposes the
// debounced interactive session plus the synchronous compact surface.
package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/nutrifind/go-food-search/config"
	"github.com/nutrifind/go-food-search/index"
	"github.com/nutrifind/go-food-search/internal/filtering"
	"github.com/nutrifind/go-food-search/internal/fuzzy"
	"github.com/nutrifind/go-food-search/internal/query"
	"github.com/nutrifind/go-food-search/internal/retrieval"
	"github.com/nutrifind/go-food-search/internal/scoring"
	"github.com/nutrifind/go-food-search/internal/semantic"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

// Engine holds the shared, read-mostly search machinery. Sessions borrow it;
// it has no per-query state of its own.
type Engine struct {
	cfg     *config.Settings
	kb      services.KnowledgeBase
	fetcher services.RecordFetcher

	parser    *query.Parser
	retriever *retrieval.Retriever
	filter    *filtering.Filter

	mu  sync.RWMutex
	src retrieval.Sources // current snapshot plus its lookup structures
}

// NewEngine wires an engine from its collaborators. cfg must have defaults
// applied.
func NewEngine(cfg *config.Settings, kb services.KnowledgeBase, fetcher services.RecordFetcher) *Engine {
	return &Engine{
		cfg:       cfg,
		kb:        kb,
		fetcher:   fetcher,
		parser:    query.New(kb),
		retriever: retrieval.New(cfg, kb),
		filter:    filtering.New(kb),
	}
}

// Publish swaps in a freshly built snapshot. The fuzzy finder and semantic
// lexicon are derived here once so every search against this snapshot shares
// them. In-flight searches keep the sources they captured.
func (e *Engine) Publish(snap *index.Snapshot) {
	src := retrieval.Sources{Snapshot: snap}
	if snap != nil {
		src.Finder = fuzzy.NewFinder(snap.Vocabulary)
		src.Embeddings = semantic.NewLexicon(snap.Vocabulary)
	}
	e.mu.Lock()
	e.src = src
	e.mu.Unlock()
}

// Rebuild builds and publishes a snapshot from full records.
func (e *Engine) Rebuild(records []model.FullRecord) *index.Snapshot {
	snap := index.Build(records)
	e.Publish(snap)
	return snap
}

// Sources returns the current snapshot sources. ok is false before the first
// Publish.
func (e *Engine) Sources() (retrieval.Sources, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.src, e.src.Snapshot != nil && !e.src.Snapshot.Empty()
}

// NewSession creates an interactive session bound to this engine.
func (e *Engine) NewSession() *Session {
	return newSession(e)
}

// DietNames returns the canonical diets the query parser understands and the
// subset actually present in the current snapshot, both sorted. UI filter
// pickers read this to avoid offering diets that would match nothing.
func (e *Engine) DietNames() (known, indexed []string) {
	known = e.kb.KnownDiets()
	if src, ok := e.Sources(); ok {
		indexed = make([]string, 0, len(src.Snapshot.KnownDiets))
		for diet := range src.Snapshot.KnownDiets {
			indexed = append(indexed, diet)
		}
		sort.Strings(indexed)
	}
	return known, indexed
}

// resolveIntent runs retrieval, filtering and scoring for an intent against
// captured sources. ok is false when the run was cancelled.
func (e *Engine) resolveIntent(src retrieval.Sources, intent *model.SearchIntent,
	mode model.SearchMode, toggles model.Toggles, excluded index.IDSet,
	cancelled func() bool) ([]scoring.Scored, bool) {

	res := e.retriever.Retrieve(src, intent)
	if len(res.ImplicitGoals) > 0 {
		intent.Goals = model.ConsolidateGoals(append(intent.Goals, res.ImplicitGoals...))
	}

	candidates := e.seedCandidates(src.Snapshot, res, intent)

	if cancelled != nil && cancelled() {
		return nil, false
	}

	survivors, ok := e.filter.Apply(src.Snapshot, candidates, filtering.Params{
		Intent:      intent,
		Mode:        mode,
		Toggles:     toggles,
		ExcludedIDs: excluded,
		Cancelled:   cancelled,
		Stride:      e.cfg.CancelCheckStride,
	})
	if !ok {
		return nil, false
	}

	return scoring.Rank(survivors, intent, src.Snapshot.NutrientMax, cancelled, e.cfg.CancelCheckStride)
}

// seedCandidates decides the candidate id list. A nil retrieval set means no
// text constraint existed: goal-only searches seed from the pre-ranked per
// nutrient list (capped), pH-only and filter-only searches scan everything.
func (e *Engine) seedCandidates(snap *index.Snapshot, res retrieval.Result, intent *model.SearchIntent) []uint32 {
	if res.IDs != nil {
		return res.IDs.Sorted()
	}
	if intent.PH == nil && len(intent.Goals) > 0 {
		ranked := snap.NutrientRankings[intent.Goals[0].Nutrient]
		if len(ranked) > e.cfg.FallbackSeedCap {
			ranked = ranked[:e.cfg.FallbackSeedCap]
		}
		out := make([]uint32, len(ranked))
		copy(out, ranked)
		return out
	}
	return snap.AllIDs()
}

// vocabularyFunc returns a membership test over the snapshot vocabulary for
// the negation extractor, or nil without a snapshot.
func vocabularyFunc(src retrieval.Sources) func(string) bool {
	snap := src.Snapshot
	if snap == nil {
		return nil
	}
	return func(word string) bool { return len(snap.Postings(word)) > 0 }
}

// alphabeticalIDs is the default listing: every record sorted by display
// name, then id for duplicate names.
func alphabeticalIDs(snap *index.Snapshot) []uint32 {
	recs := make([]*model.CompactRecord, len(snap.Records))
	for i := range snap.Records {
		recs[i] = &snap.Records[i]
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].ID < recs[j].ID
	})
	ids := make([]uint32, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids
}

// SearchCompact is the synchronous bulk surface: no debounce, no session
// state, results returned directly.
func (e *Engine) SearchCompact(queryText string, mode model.SearchMode, limit int) []model.CompactRecord {
	src, ok := e.Sources()
	if !ok {
		return nil
	}

	req := services.SearchRequest{Query: queryText, Mode: mode}
	intent := e.parser.Parse(req, vocabularyFunc(src))

	var ranked []scoring.Scored
	if intent.IsEmpty() {
		for _, id := range alphabeticalIDs(src.Snapshot) {
			rec, _ := src.Snapshot.Record(id)
			ranked = append(ranked, scoring.Scored{Record: rec})
		}
	} else {
		ranked, _ = e.resolveIntent(src, intent, mode, model.Toggles{}, nil, nil)
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]model.CompactRecord, len(ranked))
	for i, s := range ranked {
		out[i] = *s.Record
	}
	return out
}

// SearchWithRequiredKeywords runs a compact search and keeps only records
// whose name or tokens contain at least one required headword. Generative
// callers use it to reject hallucinated matches.
func (e *Engine) SearchWithRequiredKeywords(queryText string, limit int, requiredHeadwords []string) []uint32 {
	src, ok := e.Sources()
	if !ok {
		return nil
	}

	req := services.SearchRequest{Query: queryText}
	intent := e.parser.Parse(req, vocabularyFunc(src))
	ranked, done := e.resolveIntent(src, intent, model.ModeFoods, model.Toggles{}, nil, nil)
	if !done {
		return nil
	}

	headwords := make([]string, 0, len(requiredHeadwords))
	for _, hw := range requiredHeadwords {
		hw = strings.ToLower(strings.TrimSpace(hw))
		if hw != "" {
			headwords = append(headwords, hw)
		}
	}

	var ids []uint32
	for _, s := range ranked {
		if len(headwords) > 0 && !matchesAnyHeadword(s.Record, headwords) {
			continue
		}
		ids = append(ids, s.Record.ID)
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids
}

func matchesAnyHeadword(rec *model.CompactRecord, headwords []string) bool {
	for _, hw := range headwords {
		if rec.HasToken(hw) || strings.Contains(rec.PaddedName, hw) {
			return true
		}
	}
	return false
}
