package query

import (
	"reflect"
	"testing"

	"github.com/nutrifind/go-food-search/internal/kb"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

func parse(t *testing.T, q string) *model.SearchIntent {
	t.Helper()
	return New(kb.New()).Parse(services.SearchRequest{Query: q}, nil)
}

func TestParseImplicitQualitativeGoal(t *testing.T) {
	in := parse(t, "high protein")

	if len(in.Goals) != 1 || in.Goals[0].Nutrient != model.NutrientProtein ||
		in.Goals[0].Constraint.Kind != model.ConstraintHigh {
		t.Fatalf("expected high protein goal, got %+v", in.Goals)
	}
	if len(in.TextTokens) != 0 {
		t.Errorf("goal words must leave the text stream, got %v", in.TextTokens)
	}
	if in.IsEmpty() {
		t.Error("intent with a goal is not empty")
	}
}

func TestParseNumericConstraints(t *testing.T) {
	in := parse(t, "protein >= 20g sugar <= 5g")

	if len(in.Goals) != 2 {
		t.Fatalf("expected 2 goals, got %+v", in.Goals)
	}
	if in.Goals[0].Nutrient != model.NutrientProtein || in.Goals[1].Nutrient != model.NutrientSugar {
		t.Errorf("unexpected goal nutrients: %+v", in.Goals)
	}
	if len(in.TextTokens) != 0 {
		t.Errorf("constraints must not leak into text tokens: %v", in.TextTokens)
	}
}

func TestParsePH(t *testing.T) {
	t.Run("qualitative", func(t *testing.T) {
		in := parse(t, "lowest ph")
		if in.PH == nil || in.PH.Kind != model.ConstraintLowest {
			t.Fatalf("expected lowest pH, got %+v", in.PH)
		}
		if len(in.TextTokens) != 0 {
			t.Errorf("pH phrase must be consumed, got %v", in.TextTokens)
		}
	})

	t.Run("reversed order", func(t *testing.T) {
		in := parse(t, "ph high")
		if in.PH == nil || in.PH.Kind != model.ConstraintHigh {
			t.Fatalf("expected high pH, got %+v", in.PH)
		}
	})

	t.Run("numeric", func(t *testing.T) {
		in := parse(t, "juice ph < 7")
		if in.PH == nil || in.PH.Kind != model.ConstraintStrictMax || in.PH.Value != 7 {
			t.Fatalf("expected pH < 7, got %+v", in.PH)
		}
		if !reflect.DeepEqual(in.TextTokens, []string{"juice"}) {
			t.Errorf("text tokens = %v", in.TextTokens)
		}
	})

	t.Run("sort override", func(t *testing.T) {
		in := New(kb.New()).Parse(services.SearchRequest{Query: "milk", PHSort: "asc"}, nil)
		if in.PH == nil || in.PH.Kind != model.ConstraintLowest {
			t.Fatalf("asc pH sort should map to lowest, got %+v", in.PH)
		}
	})
}

func TestParseDietKeywords(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		in := parse(t, "vegan pizza")
		if !reflect.DeepEqual(in.RequiredDiets, []string{"vegan"}) {
			t.Errorf("required diets = %v", in.RequiredDiets)
		}
		if !reflect.DeepEqual(in.TextTokens, []string{"pizza"}) {
			t.Errorf("text tokens = %v", in.TextTokens)
		}
	})

	t.Run("negated", func(t *testing.T) {
		in := parse(t, "no vegan pizza")
		if !reflect.DeepEqual(in.ExcludedDiets, []string{"vegan"}) {
			t.Errorf("excluded diets = %v", in.ExcludedDiets)
		}
		if !reflect.DeepEqual(in.TextTokens, []string{"pizza"}) {
			t.Errorf("text tokens = %v", in.TextTokens)
		}
	})

	t.Run("two word diet", func(t *testing.T) {
		in := parse(t, "gluten free bread")
		if !reflect.DeepEqual(in.RequiredDiets, []string{"gluten-free"}) {
			t.Errorf("required diets = %v", in.RequiredDiets)
		}
		if !reflect.DeepEqual(in.TextTokens, []string{"bread"}) {
			t.Errorf("text tokens = %v", in.TextTokens)
		}
	})
}

func TestParseNegation(t *testing.T) {
	in := parse(t, "pizza without cheese")

	if !reflect.DeepEqual(in.NegativeIngredients, []string{"cheese"}) {
		t.Errorf("negative ingredients = %v", in.NegativeIngredients)
	}
	if !reflect.DeepEqual(in.TextTokens, []string{"pizza"}) {
		t.Errorf("text tokens = %v", in.TextTokens)
	}
	if len(in.ExcludedAllergens) != 0 {
		t.Errorf("negated ingredients must not force allergen filtering, got %v", in.ExcludedAllergens)
	}
}

func TestParseAge(t *testing.T) {
	in := parse(t, "snacks 6 months old")
	if in.ConsumerAgeMonths != 6 {
		t.Errorf("age = %d", in.ConsumerAgeMonths)
	}
	if !reflect.DeepEqual(in.TextTokens, []string{"snacks"}) {
		t.Errorf("text tokens = %v", in.TextTokens)
	}

	// An explicit request-level age wins over the text.
	in = New(kb.New()).Parse(services.SearchRequest{Query: "snacks 6 months", ConsumerAgeMonths: 12}, nil)
	if in.ConsumerAgeMonths != 12 {
		t.Errorf("request age should win, got %d", in.ConsumerAgeMonths)
	}
}

func TestParseProfileAppliesInConsumerModes(t *testing.T) {
	profile := model.Profile{
		ConsumerAgeMonths: 9,
		RequiredDiets:     []string{"vegetarian"},
		AvoidedAllergens:  []string{"milk"},
	}

	in := New(kb.New()).Parse(services.SearchRequest{Query: "puree", Mode: model.ModeNutrients, Profile: profile}, nil)
	if in.ConsumerAgeMonths != 9 || !reflect.DeepEqual(in.RequiredDiets, []string{"vegetarian"}) ||
		!reflect.DeepEqual(in.ExcludedAllergens, []string{"milk"}) {
		t.Errorf("profile must bind in nutrients mode: %+v", in)
	}

	in = New(kb.New()).Parse(services.SearchRequest{Query: "puree", Mode: model.ModeFoods, Profile: profile}, nil)
	if in.ConsumerAgeMonths != 0 || len(in.RequiredDiets) != 0 || len(in.ExcludedAllergens) != 0 {
		t.Errorf("profile must not bind in foods mode: %+v", in)
	}
}

func TestParseGoalPriorityOrder(t *testing.T) {
	req := services.SearchRequest{
		Query: "high protein",
		Goals: []model.NutrientGoal{{Nutrient: model.NutrientSugar, Constraint: model.Max(5)}},
	}
	in := New(kb.New()).Parse(req, nil)

	if len(in.Goals) != 2 {
		t.Fatalf("expected 2 goals, got %+v", in.Goals)
	}
	if in.Goals[0].Nutrient != model.NutrientSugar {
		t.Errorf("UI goals must come first, got %+v", in.Goals)
	}
	if in.Goals[1].Nutrient != model.NutrientProtein {
		t.Errorf("implicit goal should follow, got %+v", in.Goals)
	}
}

func TestParseEmptyQuery(t *testing.T) {
	in := parse(t, "")
	if !in.IsEmpty() {
		t.Errorf("empty query should produce an empty intent: %+v", in)
	}
}

func TestParseContext(t *testing.T) {
	in := parse(t, "high protein low sugar")
	ctx := in.Context()
	if !reflect.DeepEqual(ctx.Nutrients, []model.Nutrient{model.NutrientProtein, model.NutrientSugar}) {
		t.Errorf("context nutrients = %v", ctx.Nutrients)
	}
	if ctx.PHActive {
		t.Error("no pH constraint was given")
	}
}
