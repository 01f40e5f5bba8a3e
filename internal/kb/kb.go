// Package kb provides the default domain knowledge base consumed by the
// search engine: nutrient name resolution, canonical units, diet and
// allergen vocabulary. The engine only depends on the services.KnowledgeBase
// interface; this package is the built-in implementation backed by static
// tables.
package kb

import (
	"sort"
	"strings"

	"github.com/nutrifind/go-food-search/internal/fuzzy"
	"github.com/nutrifind/go-food-search/model"
)

// canonicalUnits maps each nutrient to the unit its stored values use.
var canonicalUnits = map[model.Nutrient]string{
	model.NutrientEnergy:       "kcal",
	model.NutrientProtein:      "g",
	model.NutrientFat:          "g",
	model.NutrientSaturatedFat: "g",
	model.NutrientCarbohydrate: "g",
	model.NutrientSugar:        "g",
	model.NutrientFiber:        "g",
	model.NutrientSalt:         "g",
	model.NutrientSodium:       "mg",
	model.NutrientCalcium:      "mg",
	model.NutrientIron:         "mg",
	model.NutrientVitaminC:     "mg",
	model.NutrientVitaminD:     "µg",
	model.NutrientZinc:         "mg",
	model.NutrientMagnesium:    "mg",
}

// nutrientNames maps recognized spellings to nutrients. Multi-word names use
// underscores, matching how truncated-name retrieval rejoins tokens.
var nutrientNames = map[string]model.Nutrient{
	"energy":        model.NutrientEnergy,
	"calories":      model.NutrientEnergy,
	"calorie":       model.NutrientEnergy,
	"kcal":          model.NutrientEnergy,
	"protein":       model.NutrientProtein,
	"proteins":      model.NutrientProtein,
	"prot":          model.NutrientProtein,
	"fat":           model.NutrientFat,
	"fats":          model.NutrientFat,
	"saturated_fat": model.NutrientSaturatedFat,
	"saturates":     model.NutrientSaturatedFat,
	"carbohydrate":  model.NutrientCarbohydrate,
	"carbohydrates": model.NutrientCarbohydrate,
	"carbs":         model.NutrientCarbohydrate,
	"carb":          model.NutrientCarbohydrate,
	"sugar":         model.NutrientSugar,
	"sugars":        model.NutrientSugar,
	"fiber":         model.NutrientFiber,
	"fibre":         model.NutrientFiber,
	"salt":          model.NutrientSalt,
	"sodium":        model.NutrientSodium,
	"calcium":       model.NutrientCalcium,
	"iron":          model.NutrientIron,
	"vitamin_c":     model.NutrientVitaminC,
	"vitaminc":      model.NutrientVitaminC,
	"vitamin_d":     model.NutrientVitaminD,
	"vitamind":      model.NutrientVitaminD,
	"zinc":          model.NutrientZinc,
	"magnesium":     model.NutrientMagnesium,
}

// dietSynonyms maps spellings seen in queries to canonical diet names.
var dietSynonyms = map[string]string{
	"vegan":        "vegan",
	"vegetarian":   "vegetarian",
	"veggie":       "vegetarian",
	"pescatarian":  "pescatarian",
	"glutenfree":   "gluten-free",
	"gluten-free":  "gluten-free",
	"lactosefree":  "lactose-free",
	"lactose-free": "lactose-free",
	"dairyfree":    "lactose-free",
	"dairy-free":   "lactose-free",
	"keto":         "ketogenic",
	"ketogenic":    "ketogenic",
	"paleo":        "paleo",
	"halal":        "halal",
	"kosher":       "kosher",
}

// ingredientAllergens maps ingredient words to allergen categories.
var ingredientAllergens = map[string]string{
	"milk":       "milk",
	"cheese":     "milk",
	"butter":     "milk",
	"cream":      "milk",
	"yoghurt":    "milk",
	"yogurt":     "milk",
	"lactose":    "milk",
	"egg":        "egg",
	"peanut":     "peanut",
	"almond":     "tree_nut",
	"hazelnut":   "tree_nut",
	"walnut":     "tree_nut",
	"cashew":     "tree_nut",
	"wheat":      "gluten",
	"gluten":     "gluten",
	"barley":     "gluten",
	"rye":        "gluten",
	"soy":        "soy",
	"soya":       "soy",
	"tofu":       "soy",
	"fish":       "fish",
	"salmon":     "fish",
	"tuna":       "fish",
	"shrimp":     "shellfish",
	"prawn":      "shellfish",
	"crab":       "shellfish",
	"lobster":    "shellfish",
	"mussel":     "shellfish",
	"sesame":     "sesame",
	"tahini":     "sesame",
	"celery":     "celery",
	"mustard":    "mustard",
	"sulphite":   "sulphite",
	"sulfite":    "sulphite",
}

// allergenKeywords lists, per allergen, the words whose presence in a record
// marks it as containing that allergen.
var allergenKeywords = map[string][]string{
	"milk":      {"milk", "cheese", "butter", "cream", "yoghurt", "yogurt", "lactose", "whey", "casein"},
	"egg":       {"egg", "eggs", "albumin", "mayonnaise"},
	"peanut":    {"peanut", "peanuts", "groundnut"},
	"tree_nut":  {"almond", "hazelnut", "walnut", "cashew", "pistachio", "pecan", "nut", "nuts"},
	"gluten":    {"wheat", "gluten", "barley", "rye", "spelt", "flour", "bread", "pasta"},
	"soy":       {"soy", "soya", "tofu", "edamame"},
	"fish":      {"fish", "salmon", "tuna", "cod", "anchovy"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "mussel", "oyster"},
	"sesame":    {"sesame", "tahini"},
	"celery":    {"celery"},
	"mustard":   {"mustard"},
	"sulphite":  {"sulphite", "sulfite"},
}

// systemKeywordPrefixes are prefixes of command-like tokens that should be
// evaluated last during retrieval because they tend to over-constrain.
var systemKeywordPrefixes = []string{
	"vegan", "veget", "gluten", "lactose", "keto", "paleo",
	"recipe", "menu", "favorite", "favourite",
}

// Base is the built-in knowledge base. The zero value is not usable; call New.
type Base struct {
	nutrientMatcher *fuzzy.Finder
}

// New builds the default knowledge base.
func New() *Base {
	names := make([]string, 0, len(nutrientNames))
	for name := range nutrientNames {
		names = append(names, name)
	}
	return &Base{nutrientMatcher: fuzzy.NewFinder(names)}
}

// DefaultUnit returns the canonical unit for a nutrient.
func (b *Base) DefaultUnit(n model.Nutrient) string {
	if u, ok := canonicalUnits[n]; ok {
		return u
	}
	return "g"
}

// BestNutrientMatch resolves free text to a nutrient: exact spelling first,
// then the closest fuzzy match within the usual length-scaled edit budget.
func (b *Base) BestNutrientMatch(text string) (model.Nutrient, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	if key == "" {
		return "", false
	}
	if n, ok := nutrientNames[key]; ok {
		return n, true
	}

	maxDist := fuzzy.MaxDistanceForLength(len(key))
	for _, candidate := range b.nutrientMatcher.WithinDistance(key, maxDist) {
		if n, ok := nutrientNames[candidate]; ok {
			return n, true
		}
	}
	return "", false
}

// NutrientByPrefix resolves a truncated nutrient-name prefix ("satur" for
// saturated_fat). Spaces are folded to underscores to match multi-word
// names. The lexicographically smallest matching spelling wins so the
// resolution is deterministic.
func (b *Base) NutrientByPrefix(prefix string) (model.Nutrient, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(prefix)), " ", "_")
	if key == "" {
		return "", false
	}
	best := ""
	for name := range nutrientNames {
		if strings.HasPrefix(name, key) && (best == "" || name < best) {
			best = name
		}
	}
	if best == "" {
		return "", false
	}
	return nutrientNames[best], true
}

// CanonicalDiet maps a query spelling to a canonical diet name.
func (b *Base) CanonicalDiet(text string) (string, bool) {
	diet, ok := dietSynonyms[strings.ToLower(strings.TrimSpace(text))]
	return diet, ok
}

// KnownDiets returns the canonical diet names, sorted.
func (b *Base) KnownDiets() []string {
	seen := make(map[string]struct{})
	var diets []string
	for _, canonical := range dietSynonyms {
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		diets = append(diets, canonical)
	}
	sort.Strings(diets)
	return diets
}

// AllergenForIngredient maps an ingredient word to its allergen category.
func (b *Base) AllergenForIngredient(name string) (string, bool) {
	allergen, ok := ingredientAllergens[strings.ToLower(strings.TrimSpace(name))]
	return allergen, ok
}

// Allergens returns every allergen category, sorted.
func (b *Base) Allergens() []string {
	categories := make([]string, 0, len(allergenKeywords))
	for allergen := range allergenKeywords {
		categories = append(categories, allergen)
	}
	sort.Strings(categories)
	return categories
}

// AllergenKeywords returns the keyword set for an allergen category.
func (b *Base) AllergenKeywords(allergen string) []string {
	return allergenKeywords[allergen]
}

// IsKnownIngredient reports whether the word appears in the ingredient
// vocabulary (directly or as an allergen keyword).
func (b *Base) IsKnownIngredient(word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if _, ok := ingredientAllergens[word]; ok {
		return true
	}
	for _, keywords := range allergenKeywords {
		for _, kw := range keywords {
			if kw == word {
				return true
			}
		}
	}
	return false
}

// IsSystemKeywordPrefix reports whether the token starts like a command or
// filter keyword rather than plain food text.
func (b *Base) IsSystemKeywordPrefix(token string) bool {
	token = strings.ToLower(token)
	for _, prefix := range systemKeywordPrefixes {
		if strings.HasPrefix(token, prefix) || strings.HasPrefix(prefix, token) {
			return true
		}
	}
	return false
}
