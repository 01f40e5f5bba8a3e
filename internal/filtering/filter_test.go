package filtering

import (
	"testing"

	"github.com/nutrifind/go-food-search/index"
	"github.com/nutrifind/go-food-search/internal/kb"
	"github.com/nutrifind/go-food-search/model"
)

func testSnapshot() *index.Snapshot {
	return index.Build([]model.FullRecord{
		{ID: 1, Name: "Whole Milk", PH: 6.7,
			Nutrients: map[model.Nutrient]float64{model.NutrientProtein: 3.4, model.NutrientSugar: 5}},
		{ID: 2, Name: "Milk-Free Oat Drink"},
		{ID: 3, Name: "Tomato Soup"},
		{ID: 4, Name: "Cheddar Cheese", Diets: []string{"vegetarian"}},
		{ID: 5, Name: "Apple Juice", PH: 3.5, Diets: []string{"vegan"},
			Nutrients: map[model.Nutrient]float64{model.NutrientSugar: 10}},
		{ID: 6, Name: "Baby Puree", MinAgeMonths: 4, Diets: []string{"vegan"}},
		{ID: 7, Name: "Protein Shake", IsRecipe: true, IsFavorite: true,
			Nutrients: map[model.Nutrient]float64{model.NutrientProtein: 25}},
		{ID: 8, Name: "Plain Water", PH: 7.0,
			Nutrients: map[model.Nutrient]float64{model.NutrientSugar: 0}},
		{ID: 9, Name: "Toddler Snack", MinAgeMonths: 12},
	})
}

func runFilter(t *testing.T, snap *index.Snapshot, p Params) []uint32 {
	t.Helper()
	if p.Intent == nil {
		p.Intent = &model.SearchIntent{}
	}
	out, ok := New(kb.New()).Apply(snap, snap.AllIDs(), p)
	if !ok {
		t.Fatal("filter run was unexpectedly cancelled")
	}
	ids := make([]uint32, len(out))
	for i, rec := range out {
		ids[i] = rec.ID
	}
	return ids
}

func contains(ids []uint32, id uint32) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func TestFilterNoConstraintsKeepsEverything(t *testing.T) {
	snap := testSnapshot()
	ids := runFilter(t, snap, Params{})
	if len(ids) != len(snap.Records) {
		t.Errorf("expected all %d records, got %d", len(snap.Records), len(ids))
	}
}

// Adding an exclusion must never grow the candidate set.
func TestFilterIsMonotonic(t *testing.T) {
	snap := testSnapshot()
	base := runFilter(t, snap, Params{})

	stricter := []Params{
		{Intent: &model.SearchIntent{ExcludedDiets: []string{"vegan"}}},
		{Intent: &model.SearchIntent{ExcludedAllergens: []string{"milk"}}},
		{Intent: &model.SearchIntent{NegativeIngredients: []string{"tomato"}}},
		{Intent: &model.SearchIntent{ConsumerAgeMonths: 6}},
		{Intent: &model.SearchIntent{ExcludedDiets: []string{"vegan"}, ExcludedAllergens: []string{"milk"}, ConsumerAgeMonths: 6}},
	}
	for _, p := range stricter {
		got := runFilter(t, snap, p)
		if len(got) > len(base) {
			t.Errorf("exclusions grew the result set: %d > %d for %+v", len(got), len(base), p.Intent)
		}
	}
}

func TestFilterPHUnknownRejected(t *testing.T) {
	snap := testSnapshot()
	c := model.Lowest()
	ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{PH: &c}})

	want := []uint32{1, 5, 8}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for _, id := range want {
		if !contains(ids, id) {
			t.Errorf("record %d with known pH should survive", id)
		}
	}
}

func TestFilterPHThreshold(t *testing.T) {
	snap := testSnapshot()
	c := model.Max(4.5)
	ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{PH: &c}})
	if len(ids) != 1 || ids[0] != 5 {
		t.Errorf("only the pH 3.5 record should pass max(4.5), got %v", ids)
	}
}

func TestZeroValueTreatedAsAbsent(t *testing.T) {
	snap := testSnapshot()
	intent := &model.SearchIntent{Goals: []model.NutrientGoal{
		{Nutrient: model.NutrientSugar, Constraint: model.Max(5)},
	}}
	ids := runFilter(t, snap, Params{Intent: intent})

	// Record 8 stores an explicit 0 which max(5) would satisfy numerically,
	// but zero means no data and must be rejected.
	if contains(ids, 8) {
		t.Error("zero value must not satisfy a numeric threshold")
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected only record 1, got %v", ids)
	}
}

func TestFilterQualitativeGoals(t *testing.T) {
	snap := testSnapshot()

	t.Run("high rejects missing and zero", func(t *testing.T) {
		intent := &model.SearchIntent{Goals: []model.NutrientGoal{
			{Nutrient: model.NutrientProtein, Constraint: model.High()},
		}}
		ids := runFilter(t, snap, Params{Intent: intent})
		if len(ids) != 2 || !contains(ids, 1) || !contains(ids, 7) {
			t.Errorf("expected records 1 and 7, got %v", ids)
		}
	})

	t.Run("low accepts zero", func(t *testing.T) {
		intent := &model.SearchIntent{Goals: []model.NutrientGoal{
			{Nutrient: model.NutrientSugar, Constraint: model.Low()},
		}}
		ids := runFilter(t, snap, Params{Intent: intent})
		if len(ids) != len(snap.Records) {
			t.Errorf("low must not filter, got %v", ids)
		}
	})
}

func TestFilterNegativeIngredientExclusionPhrase(t *testing.T) {
	snap := testSnapshot()
	intent := &model.SearchIntent{NegativeIngredients: []string{"milk"}}
	ids := runFilter(t, snap, Params{Intent: intent})

	if contains(ids, 1) {
		t.Error("record mentioning milk must be rejected")
	}
	if !contains(ids, 2) {
		t.Error("a name advertising 'milk-free' must be exempt")
	}
}

func TestFilterNegativeTokens(t *testing.T) {
	snap := testSnapshot()
	intent := &model.SearchIntent{NegativeTokens: []string{"tomato"}}
	ids := runFilter(t, snap, Params{Intent: intent})
	if contains(ids, 3) {
		t.Error("tomato soup should be rejected")
	}
}

func TestFilterDiets(t *testing.T) {
	snap := testSnapshot()

	t.Run("excluded", func(t *testing.T) {
		ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{ExcludedDiets: []string{"vegan"}}})
		if contains(ids, 5) || contains(ids, 6) {
			t.Errorf("vegan records must be rejected, got %v", ids)
		}
	})

	t.Run("required", func(t *testing.T) {
		ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{RequiredDiets: []string{"vegan"}}})
		if len(ids) != 2 || !contains(ids, 5) || !contains(ids, 6) {
			t.Errorf("only vegan records should survive, got %v", ids)
		}
	})

	t.Run("ui diet filter", func(t *testing.T) {
		ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{DietFilter: "vegetarian"}})
		if len(ids) != 1 || ids[0] != 4 {
			t.Errorf("expected only the vegetarian record, got %v", ids)
		}
	})
}

func TestFilterAgeCeiling(t *testing.T) {
	snap := testSnapshot()
	ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{ConsumerAgeMonths: 6}})
	if contains(ids, 9) {
		t.Error("record requiring 12 months must be rejected for a 6 month old")
	}
	if !contains(ids, 6) {
		t.Error("record requiring 4 months must be kept")
	}
}

func TestFilterAllergens(t *testing.T) {
	snap := testSnapshot()

	t.Run("per allergen", func(t *testing.T) {
		ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{ExcludedAllergens: []string{"milk"}}})
		for _, id := range []uint32{1, 2, 4} {
			if contains(ids, id) {
				t.Errorf("record %d carries a milk keyword and must be rejected", id)
			}
		}
	})

	t.Run("blanket flag", func(t *testing.T) {
		ids := runFilter(t, snap, Params{Intent: &model.SearchIntent{ExcludeAllAllergens: true}})
		for _, id := range []uint32{1, 2, 4} {
			if contains(ids, id) {
				t.Errorf("record %d must be rejected by the blanket flag", id)
			}
		}
	})
}

func TestFilterModeAndToggles(t *testing.T) {
	snap := testSnapshot()

	ids := runFilter(t, snap, Params{Mode: model.ModeRecipes})
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("recipes mode should keep only recipes, got %v", ids)
	}

	ids = runFilter(t, snap, Params{Toggles: model.Toggles{FavoritesOnly: true}})
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("favorites toggle should keep only favorites, got %v", ids)
	}
}

func TestFilterExcludedIDs(t *testing.T) {
	snap := testSnapshot()
	ids := runFilter(t, snap, Params{ExcludedIDs: index.NewIDSet(1, 3)})
	if contains(ids, 1) || contains(ids, 3) {
		t.Errorf("excluded ids must not survive, got %v", ids)
	}
}

func TestFilterNonLatinQuery(t *testing.T) {
	snap := index.Build([]model.FullRecord{
		{ID: 1, Name: "味噌汁 Miso Soup"},
		{ID: 2, Name: "Chicken Soup"},
	})
	intent := &model.SearchIntent{RawQuery: "味噌"}
	out, ok := New(kb.New()).Apply(snap, snap.AllIDs(), Params{Intent: intent})
	if !ok || len(out) != 1 || out[0].ID != 1 {
		t.Errorf("non-Latin query must substring match names, got %+v", out)
	}
}

func TestFilterCancellation(t *testing.T) {
	snap := testSnapshot()
	_, ok := New(kb.New()).Apply(snap, snap.AllIDs(), Params{
		Intent:    &model.SearchIntent{},
		Cancelled: func() bool { return true },
	})
	if ok {
		t.Error("a cancelled run must report ok=false")
	}
}
