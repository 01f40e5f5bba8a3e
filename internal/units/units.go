// Package units converts free-form value/unit pairs into each nutrient's
// canonical unit. Conversion is total: unrecognized unit text is treated as
// already canonical rather than reported as an error, so a sloppy query
// degrades to a best-effort value instead of failing.
package units

import "strings"

// Class is the unit family a nutrient's canonical unit belongs to.
type Class int

const (
	ClassEnergy Class = iota // kcal-based
	ClassMass                // µg..kg chain
)

// kcalPerKilojoule converts kJ input to kcal.
const kcalPerKilojoule = 1.0 / 4.184

// gramsPerUnit maps a recognized mass unit spelling to its size in grams.
var gramsPerUnit = map[string]float64{
	"kg":         1000,
	"kilogram":   1000,
	"kilograms":  1000,
	"g":          1,
	"gram":       1,
	"grams":      1,
	"gr":         1,
	"mg":         0.001,
	"milligram":  0.001,
	"milligrams": 0.001,
	"µg":         0.000001,
	"ug":         0.000001,
	"mcg":        0.000001,
	"microgram":  0.000001,
	"micrograms": 0.000001,
	"ng":         0.000000001,
}

// ClassOf returns the unit class for a canonical unit spelling.
func ClassOf(canonicalUnit string) Class {
	switch strings.ToLower(canonicalUnit) {
	case "kcal", "kj", "cal":
		return ClassEnergy
	}
	return ClassMass
}

// IsUnitToken reports whether tok looks like a unit spelling. Retrieval uses
// this to avoid fuzzy-expanding stray unit words from numeric constraints.
func IsUnitToken(tok string) bool {
	tok = strings.ToLower(tok)
	if tok == "kcal" || tok == "kj" || tok == "cal" {
		return true
	}
	_, ok := gramsPerUnit[tok]
	return ok
}

// Normalize converts value expressed in unitText into the nutrient's
// canonical unit. An empty unitText means the value is already canonical.
//
// Energy: kJ divides by 4.184; anything else is assumed kcal.
// Mass: the input is converted to grams first, then grams to the canonical
// mass unit by powers of 1000. Unrecognized unit text is assumed to already
// be grams respectively canonical.
func Normalize(value float64, unitText, canonicalUnit string) float64 {
	unitText = strings.ToLower(strings.TrimSpace(unitText))
	if unitText == "" {
		return value
	}

	if ClassOf(canonicalUnit) == ClassEnergy {
		if unitText == "kj" {
			return value * kcalPerKilojoule
		}
		return value
	}

	grams := value
	if factor, ok := gramsPerUnit[unitText]; ok {
		grams = value * factor
	}
	return gramsToCanonical(grams, canonicalUnit)
}

func gramsToCanonical(grams float64, canonicalUnit string) float64 {
	switch strings.ToLower(canonicalUnit) {
	case "mg":
		return grams * 1000
	case "µg", "ug", "mcg":
		return grams * 1000000
	default: // grams, or anything unrecognized
		return grams
	}
}
