package model

// SearchMode selects which record families a search considers and whether
// profile constraints apply.
type SearchMode string

const (
	ModeFoods     SearchMode = "foods"
	ModeRecipes   SearchMode = "recipes"
	ModeMenus     SearchMode = "menus"
	ModeNutrients SearchMode = "nutrients"
	ModeMealPlans SearchMode = "meal_plans"
	ModeDiets     SearchMode = "diets"
)

// Toggles are the boolean result filters the caller can flip independently
// of the query text.
type Toggles struct {
	FavoritesOnly bool `json:"favorites_only"`
	RecipesOnly   bool `json:"recipes_only"`
	MenusOnly     bool `json:"menus_only"`
}

// Profile carries the consumer constraints applied in the nutrients and
// meal-plan modes: an age ceiling, diets that must all be met, and allergens
// that must all be absent.
type Profile struct {
	ConsumerAgeMonths int      `json:"consumer_age_months,omitempty"`
	RequiredDiets     []string `json:"required_diets,omitempty"`
	AvoidedAllergens  []string `json:"avoided_allergens,omitempty"`
}

// SearchIntent is the fully resolved query. It is built fresh per search
// invocation and must not be mutated once handed to the pipeline.
type SearchIntent struct {
	RawQuery     string
	CleanedQuery string // lower-cased, whitespace-collapsed, constraints stripped

	TextTokens          []string
	NegativeTokens      []string
	NegativeIngredients []string

	// Goals are priority ordered: UI filters first, then in-text numeric
	// constraints, then implicit keyword constraints.
	Goals []NutrientGoal

	DietFilter    string // single UI-selected diet, empty if none
	RequiredDiets []string
	ExcludedDiets []string

	ExcludedAllergens   []string
	ExcludeAllAllergens bool

	ConsumerAgeMonths int // 0 means unset

	PH *Constraint // nil means no pH constraint
}

// IsEmpty reports whether the intent imposes no constraint at all, which
// short-circuits to the default alphabetical listing.
func (in *SearchIntent) IsEmpty() bool {
	return in.CleanedQuery == "" &&
		len(in.TextTokens) == 0 &&
		len(in.NegativeTokens) == 0 &&
		len(in.NegativeIngredients) == 0 &&
		len(in.Goals) == 0 &&
		in.DietFilter == "" &&
		len(in.RequiredDiets) == 0 &&
		len(in.ExcludedDiets) == 0 &&
		len(in.ExcludedAllergens) == 0 &&
		!in.ExcludeAllAllergens &&
		in.ConsumerAgeMonths == 0 &&
		in.PH == nil
}

// SearchContext is the slice of the intent the display layer needs to render
// active filters and which nutrient columns to surface. It is rebuilt on
// every completed search.
type SearchContext struct {
	Nutrients     []Nutrient `json:"nutrients,omitempty"`
	DietFilter    string     `json:"diet_filter,omitempty"`
	RequiredDiets []string   `json:"required_diets,omitempty"`
	AgeMonths     int        `json:"age_months,omitempty"`
	PHActive      bool       `json:"ph_active"`
}

// Context derives the display context from the intent.
func (in *SearchIntent) Context() SearchContext {
	ctx := SearchContext{
		DietFilter:    in.DietFilter,
		RequiredDiets: in.RequiredDiets,
		AgeMonths:     in.ConsumerAgeMonths,
		PHActive:      in.PH != nil,
	}
	seen := make(map[Nutrient]struct{}, len(in.Goals))
	for _, g := range in.Goals {
		if _, dup := seen[g.Nutrient]; dup {
			continue
		}
		seen[g.Nutrient] = struct{}{}
		ctx.Nutrients = append(ctx.Nutrients, g.Nutrient)
	}
	return ctx
}
