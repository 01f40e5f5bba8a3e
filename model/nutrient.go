package model

// Nutrient identifies a tracked nutrient. Values are stable strings so they
// can be used as JSON keys and config values directly.
type Nutrient string

const (
	NutrientEnergy       Nutrient = "energy"
	NutrientProtein      Nutrient = "protein"
	NutrientFat          Nutrient = "fat"
	NutrientSaturatedFat Nutrient = "saturated_fat"
	NutrientCarbohydrate Nutrient = "carbohydrate"
	NutrientSugar        Nutrient = "sugar"
	NutrientFiber        Nutrient = "fiber"
	NutrientSalt         Nutrient = "salt"
	NutrientSodium       Nutrient = "sodium"
	NutrientCalcium      Nutrient = "calcium"
	NutrientIron         Nutrient = "iron"
	NutrientVitaminC     Nutrient = "vitamin_c"
	NutrientVitaminD     Nutrient = "vitamin_d"
	NutrientZinc         Nutrient = "zinc"
	NutrientMagnesium    Nutrient = "magnesium"
)

// AllNutrients lists every nutrient the engine tracks, in display order.
var AllNutrients = []Nutrient{
	NutrientEnergy,
	NutrientProtein,
	NutrientFat,
	NutrientSaturatedFat,
	NutrientCarbohydrate,
	NutrientSugar,
	NutrientFiber,
	NutrientSalt,
	NutrientSodium,
	NutrientCalcium,
	NutrientIron,
	NutrientVitaminC,
	NutrientVitaminD,
	NutrientZinc,
	NutrientMagnesium,
}

func (n Nutrient) String() string { return string(n) }
