package model

// ConstraintKind is the comparator semantics attached to a nutrient or pH
// goal. The numeric kinds carry one or two threshold values; the qualitative
// kinds (High, Low, Lowest, Highest) carry none.
type ConstraintKind int

const (
	ConstraintMin ConstraintKind = iota // value >= threshold
	ConstraintMax                       // value <= threshold
	ConstraintStrictMin                 // value > threshold
	ConstraintStrictMax                 // value < threshold
	ConstraintRange                     // lo <= value <= hi
	ConstraintNotEqual                  // value != threshold
	ConstraintHigh                      // directional: favor high values
	ConstraintLow                       // directional: favor low values
	ConstraintLowest                    // reorder ascending, no filtering
	ConstraintHighest                   // reorder descending, no filtering
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintMin:
		return "min"
	case ConstraintMax:
		return "max"
	case ConstraintStrictMin:
		return "strict_min"
	case ConstraintStrictMax:
		return "strict_max"
	case ConstraintRange:
		return "range"
	case ConstraintNotEqual:
		return "not_equal"
	case ConstraintHigh:
		return "high"
	case ConstraintLow:
		return "low"
	case ConstraintLowest:
		return "lowest"
	case ConstraintHighest:
		return "highest"
	}
	return "unknown"
}

// Constraint is a comparator with its threshold(s). Hi is only meaningful
// for ConstraintRange.
type Constraint struct {
	Kind  ConstraintKind `json:"kind"`
	Value float64        `json:"value,omitempty"`
	Hi    float64        `json:"hi,omitempty"`
}

func Min(v float64) Constraint       { return Constraint{Kind: ConstraintMin, Value: v} }
func Max(v float64) Constraint       { return Constraint{Kind: ConstraintMax, Value: v} }
func StrictMin(v float64) Constraint { return Constraint{Kind: ConstraintStrictMin, Value: v} }
func StrictMax(v float64) Constraint { return Constraint{Kind: ConstraintStrictMax, Value: v} }
func NotEqual(v float64) Constraint  { return Constraint{Kind: ConstraintNotEqual, Value: v} }
func High() Constraint               { return Constraint{Kind: ConstraintHigh} }
func Low() Constraint                { return Constraint{Kind: ConstraintLow} }
func Lowest() Constraint             { return Constraint{Kind: ConstraintLowest} }
func Highest() Constraint            { return Constraint{Kind: ConstraintHighest} }

// RangeOf builds a range constraint, swapping the bounds if given reversed.
func RangeOf(lo, hi float64) Constraint {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Constraint{Kind: ConstraintRange, Value: lo, Hi: hi}
}

// IsThreshold reports whether the constraint carries a numeric bound that
// candidate values are checked against (as opposed to the qualitative kinds).
func (c Constraint) IsThreshold() bool {
	switch c.Kind {
	case ConstraintMin, ConstraintMax, ConstraintStrictMin, ConstraintStrictMax,
		ConstraintRange, ConstraintNotEqual:
		return true
	}
	return false
}

// FavorsLow reports whether the constraint prefers smaller values when
// ordering results.
func (c Constraint) FavorsLow() bool {
	switch c.Kind {
	case ConstraintMax, ConstraintStrictMax, ConstraintLow, ConstraintLowest:
		return true
	}
	return false
}

// Matches evaluates a numeric-threshold constraint against a value. The
// qualitative kinds always match here; their semantics live in the filter
// pipeline (which also applies the zero-means-absent rule).
func (c Constraint) Matches(v float64) bool {
	switch c.Kind {
	case ConstraintMin:
		return v >= c.Value
	case ConstraintMax:
		return v <= c.Value
	case ConstraintStrictMin:
		return v > c.Value
	case ConstraintStrictMax:
		return v < c.Value
	case ConstraintRange:
		return v >= c.Value && v <= c.Hi
	case ConstraintNotEqual:
		return v != c.Value
	}
	return true
}

// MatchesPH evaluates the constraint against a known pH value. High and Low
// become threshold checks around neutral (7.0); Lowest and Highest never
// filter, they only reorder.
func (c Constraint) MatchesPH(ph float64) bool {
	switch c.Kind {
	case ConstraintHigh:
		return ph >= 7.0
	case ConstraintLow:
		return ph <= 7.0
	case ConstraintLowest, ConstraintHighest:
		return true
	}
	return c.Matches(ph)
}

// NutrientGoal pairs a nutrient with the constraint requested for it.
type NutrientGoal struct {
	Nutrient   Nutrient   `json:"nutrient"`
	Constraint Constraint `json:"constraint"`
}

// ConsolidateGoals merges goals that target the same nutrient. Overlapping
// lower bounds keep the largest, overlapping upper bounds keep the smallest,
// and one bound of each collapses into a range. Qualitative goals and
// NotEqual pass through untouched. Priority order of first appearance is
// preserved.
func ConsolidateGoals(goals []NutrientGoal) []NutrientGoal {
	type bounds struct {
		lower    *Constraint
		upper    *Constraint
		passthru []Constraint
		order    int
	}

	perNutrient := make(map[Nutrient]*bounds)
	var nutrients []Nutrient

	for _, g := range goals {
		b, ok := perNutrient[g.Nutrient]
		if !ok {
			b = &bounds{order: len(nutrients)}
			perNutrient[g.Nutrient] = b
			nutrients = append(nutrients, g.Nutrient)
		}
		c := g.Constraint
		switch c.Kind {
		case ConstraintMin, ConstraintStrictMin:
			if b.lower == nil || c.Value > b.lower.Value {
				cc := c
				b.lower = &cc
			}
		case ConstraintMax, ConstraintStrictMax:
			if b.upper == nil || c.Value < b.upper.Value {
				cc := c
				b.upper = &cc
			}
		case ConstraintRange:
			lo, hi := Min(c.Value), Max(c.Hi)
			if b.lower == nil || lo.Value > b.lower.Value {
				b.lower = &lo
			}
			if b.upper == nil || hi.Value < b.upper.Value {
				b.upper = &hi
			}
		default:
			b.passthru = append(b.passthru, c)
		}
	}

	merged := make([]NutrientGoal, 0, len(goals))
	for _, n := range nutrients {
		b := perNutrient[n]
		switch {
		case b.lower != nil && b.upper != nil:
			merged = append(merged, NutrientGoal{Nutrient: n, Constraint: RangeOf(b.lower.Value, b.upper.Value)})
		case b.lower != nil:
			merged = append(merged, NutrientGoal{Nutrient: n, Constraint: *b.lower})
		case b.upper != nil:
			merged = append(merged, NutrientGoal{Nutrient: n, Constraint: *b.upper})
		}
		for _, c := range b.passthru {
			merged = append(merged, NutrientGoal{Nutrient: n, Constraint: c})
		}
	}
	return merged
}
