package index

import (
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nutrifind/go-food-search/internal/tokenizer"
	"github.com/nutrifind/go-food-search/model"
)

// snapshotVersion increments on every build so sessions can tell snapshots
// apart.
var snapshotVersion uint64

// Build projects full records into a fresh immutable Snapshot. Record
// tokenization runs in parallel; the merge into index structures is
// sequential and owns all maps, so no locking is needed.
func Build(records []model.FullRecord) *Snapshot {
	compact := make([]model.CompactRecord, len(records))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range records {
		i := i
		g.Go(func() error {
			compact[i] = project(&records[i])
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	snap := &Snapshot{
		Version:          atomic.AddUint64(&snapshotVersion, 1),
		Records:          compact,
		byID:             make(map[uint32]int, len(compact)),
		Inverted:         make(map[string]IDSet),
		NutrientMax:      make(map[model.Nutrient]float64),
		NutrientRankings: make(map[model.Nutrient][]uint32),
		KnownDiets:       make(map[string]struct{}),
	}

	for i := range compact {
		rec := &compact[i]
		snap.byID[rec.ID] = i

		for tok := range rec.Tokens {
			postings, ok := snap.Inverted[tok]
			if !ok {
				postings = make(IDSet)
				snap.Inverted[tok] = postings
			}
			postings.Add(rec.ID)
		}

		for diet := range rec.Diets {
			snap.KnownDiets[diet] = struct{}{}
		}

		for n := range rec.Nutrients {
			if d := rec.Density(n); d > snap.NutrientMax[n] {
				snap.NutrientMax[n] = d
			}
		}
	}

	snap.Vocabulary = make([]string, 0, len(snap.Inverted))
	for tok := range snap.Inverted {
		snap.Vocabulary = append(snap.Vocabulary, tok)
	}
	sort.Strings(snap.Vocabulary)

	buildRankings(snap)

	return snap
}

// project builds the compact search projection of one record.
func project(full *model.FullRecord) model.CompactRecord {
	tokens := make(map[string]struct{})
	for _, tok := range tokenizer.Tokenize(full.Name) {
		tokens[tok] = struct{}{}
	}
	for _, ingredient := range full.Ingredients {
		for _, tok := range tokenizer.Tokenize(ingredient) {
			tokens[tok] = struct{}{}
		}
	}

	diets := make(map[string]struct{}, len(full.Diets))
	for _, diet := range full.Diets {
		diets[diet] = struct{}{}
	}

	nutrients := make(map[model.Nutrient]float64, len(full.Nutrients))
	for n, v := range full.Nutrients {
		nutrients[n] = v
	}

	return model.CompactRecord{
		ID:              full.ID,
		Name:            full.Name,
		PaddedName:      model.PadName(full.Name),
		Tokens:          tokens,
		Diets:           diets,
		IsRecipe:        full.IsRecipe,
		IsMenu:          full.IsMenu,
		IsFavorite:      full.IsFavorite,
		MinAgeMonths:    full.MinAgeMonths,
		ReferenceWeight: full.ReferenceWeight,
		PH:              full.PH,
		Nutrients:       nutrients,
	}
}

// buildRankings sorts ids by descending density per nutrient, breaking ties
// by name so rankings are deterministic.
func buildRankings(snap *Snapshot) {
	for n := range snap.NutrientMax {
		type entry struct {
			id      uint32
			density float64
			name    string
		}
		entries := make([]entry, 0, len(snap.Records))
		for i := range snap.Records {
			rec := &snap.Records[i]
			if _, ok := rec.Nutrients[n]; !ok {
				continue
			}
			entries = append(entries, entry{id: rec.ID, density: rec.Density(n), name: rec.Name})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].density != entries[j].density {
				return entries[i].density > entries[j].density
			}
			return entries[i].name < entries[j].name
		})
		ids := make([]uint32, len(entries))
		for i, e := range entries {
			ids[i] = e.id
		}
		snap.NutrientRankings[n] = ids
	}
}
