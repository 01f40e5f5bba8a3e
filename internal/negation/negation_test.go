package negation

import (
	"reflect"
	"testing"

	"github.com/nutrifind/go-food-search/internal/kb"
)

func TestExtractKnownIngredient(t *testing.T) {
	res := Extract(kb.New(), []string{"pizza", "without", "cheese"}, nil)

	if !reflect.DeepEqual(res.Positive, []string{"pizza"}) {
		t.Errorf("positive = %v", res.Positive)
	}
	if !reflect.DeepEqual(res.Ingredients, []string{"cheese"}) {
		t.Errorf("ingredients = %v", res.Ingredients)
	}
	if !reflect.DeepEqual(res.Allergens, []string{"milk"}) {
		t.Errorf("allergens = %v", res.Allergens)
	}
}

func TestExtractTrimsPunctuation(t *testing.T) {
	res := Extract(kb.New(), []string{"pizza", "without", "cheese,"}, nil)

	if !reflect.DeepEqual(res.Ingredients, []string{"cheese"}) {
		t.Errorf("punctuation should not hide the ingredient, got %v", res.Ingredients)
	}
}

func TestExtractSingularizes(t *testing.T) {
	res := Extract(kb.New(), []string{"cake", "no", "almonds"}, nil)

	if !reflect.DeepEqual(res.Ingredients, []string{"almond"}) {
		t.Errorf("expected singularized almond, got %v", res.Ingredients)
	}
	if !reflect.DeepEqual(res.Allergens, []string{"tree_nut"}) {
		t.Errorf("allergens = %v", res.Allergens)
	}
}

func TestExtractVocabularyToken(t *testing.T) {
	vocab := func(w string) bool { return w == "kale" }
	res := Extract(kb.New(), []string{"salad", "without", "kale"}, vocab)

	if !reflect.DeepEqual(res.Tokens, []string{"kale"}) {
		t.Errorf("tokens = %v", res.Tokens)
	}
	if len(res.Ingredients) != 0 {
		t.Errorf("kale is not a known ingredient, got %v", res.Ingredients)
	}
	if !reflect.DeepEqual(res.Positive, []string{"salad"}) {
		t.Errorf("positive = %v", res.Positive)
	}
}

func TestExtractUnrecognizedCandidateStaysPositive(t *testing.T) {
	res := Extract(kb.New(), []string{"no", "zorbles", "please"}, nil)

	if !reflect.DeepEqual(res.Positive, []string{"no", "zorbles", "please"}) {
		t.Errorf("unrecognized candidate must keep the marker as text, got %v", res.Positive)
	}
	if len(res.Tokens) != 0 || len(res.Ingredients) != 0 {
		t.Errorf("nothing should be negated: %+v", res)
	}
}

func TestExtractMarkerAtEnd(t *testing.T) {
	res := Extract(kb.New(), []string{"milk", "without"}, nil)
	if !reflect.DeepEqual(res.Positive, []string{"milk", "without"}) {
		t.Errorf("trailing marker has nothing to negate, got %v", res.Positive)
	}
}

func TestExtractMultipleMarkers(t *testing.T) {
	res := Extract(kb.New(), []string{"bread", "no", "egg", "excluding", "sesame"}, nil)

	if !reflect.DeepEqual(res.Positive, []string{"bread"}) {
		t.Errorf("positive = %v", res.Positive)
	}
	if !reflect.DeepEqual(res.Ingredients, []string{"egg", "sesame"}) {
		t.Errorf("ingredients = %v", res.Ingredients)
	}
	if !reflect.DeepEqual(res.Allergens, []string{"egg", "sesame"}) {
		t.Errorf("allergens = %v", res.Allergens)
	}
}

func TestIsMarker(t *testing.T) {
	for _, w := range []string{"no", "without", "excluding", "exclude", "except", "minus"} {
		if !IsMarker(w) {
			t.Errorf("%q should be a marker", w)
		}
	}
	if IsMarker("with") {
		t.Error("with is not a marker")
	}
}
