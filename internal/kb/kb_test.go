package kb

import (
	"testing"

	"github.com/nutrifind/go-food-search/model"
)

func TestBestNutrientMatch(t *testing.T) {
	b := New()

	tests := []struct {
		input string
		want  model.Nutrient
		ok    bool
	}{
		{"protein", model.NutrientProtein, true},
		{"Protein", model.NutrientProtein, true},
		{"carbs", model.NutrientCarbohydrate, true},
		{"vitamin c", model.NutrientVitaminC, true},
		{"saturated fat", model.NutrientSaturatedFat, true},
		{"protien", model.NutrientProtein, true}, // typo within budget
		{"fibre", model.NutrientFiber, true},
		{"ph", "", false},
		{"unicorn", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := b.BestNutrientMatch(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("BestNutrientMatch(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNutrientByPrefix(t *testing.T) {
	b := New()

	if n, ok := b.NutrientByPrefix("satur"); !ok || n != model.NutrientSaturatedFat {
		t.Errorf("satur should resolve to saturated fat, got %v %v", n, ok)
	}
	if n, ok := b.NutrientByPrefix("magn"); !ok || n != model.NutrientMagnesium {
		t.Errorf("magn should resolve to magnesium, got %v %v", n, ok)
	}
	if _, ok := b.NutrientByPrefix("xyz"); ok {
		t.Error("unknown prefix must not resolve")
	}
	if _, ok := b.NutrientByPrefix(""); ok {
		t.Error("empty prefix must not resolve")
	}
}

func TestDefaultUnit(t *testing.T) {
	b := New()
	if u := b.DefaultUnit(model.NutrientEnergy); u != "kcal" {
		t.Errorf("energy unit = %q", u)
	}
	if u := b.DefaultUnit(model.NutrientProtein); u != "g" {
		t.Errorf("protein unit = %q", u)
	}
	if u := b.DefaultUnit(model.NutrientSodium); u != "mg" {
		t.Errorf("sodium unit = %q", u)
	}
	if u := b.DefaultUnit(model.Nutrient("mystery")); u != "g" {
		t.Errorf("unknown nutrient should default to grams, got %q", u)
	}
}

func TestCanonicalDiet(t *testing.T) {
	b := New()
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"vegan", "vegan", true},
		{"keto", "ketogenic", true},
		{"gluten-free", "gluten-free", true},
		{"dairy-free", "lactose-free", true},
		{"veggie", "vegetarian", true},
		{"carnivore", "", false},
	}
	for _, tt := range tests {
		got, ok := b.CanonicalDiet(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CanonicalDiet(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAllergenMapping(t *testing.T) {
	b := New()

	if a, ok := b.AllergenForIngredient("cheese"); !ok || a != "milk" {
		t.Errorf("cheese should map to milk, got %q %v", a, ok)
	}
	if a, ok := b.AllergenForIngredient("almond"); !ok || a != "tree_nut" {
		t.Errorf("almond should map to tree_nut, got %q %v", a, ok)
	}
	if _, ok := b.AllergenForIngredient("water"); ok {
		t.Error("water is not an allergen source")
	}

	keywords := b.AllergenKeywords("milk")
	found := false
	for _, kw := range keywords {
		if kw == "whey" {
			found = true
		}
	}
	if !found {
		t.Errorf("milk keywords should include whey, got %v", keywords)
	}

	allergens := b.Allergens()
	if len(allergens) == 0 {
		t.Fatal("expected allergen categories")
	}
	for i := 1; i < len(allergens); i++ {
		if allergens[i-1] >= allergens[i] {
			t.Errorf("allergens not sorted: %v", allergens)
		}
	}
}

func TestIsKnownIngredient(t *testing.T) {
	b := New()
	for _, w := range []string{"milk", "cheese", "nuts", "whey"} {
		if !b.IsKnownIngredient(w) {
			t.Errorf("%q should be known", w)
		}
	}
	if b.IsKnownIngredient("zorble") {
		t.Error("zorble should not be known")
	}
}

func TestIsSystemKeywordPrefix(t *testing.T) {
	b := New()
	if !b.IsSystemKeywordPrefix("vegan") || !b.IsSystemKeywordPrefix("veg") {
		t.Error("diet keywords and their prefixes are system keywords")
	}
	if !b.IsSystemKeywordPrefix("recipes") {
		t.Error("recipe-like tokens are system keywords")
	}
	if b.IsSystemKeywordPrefix("milk") {
		t.Error("plain food words are not system keywords")
	}
}
