// Package constraint extracts numeric nutrient constraints from free query
// text. Parsing is an ordered cascade of pattern passes over a normalized
// copy of the query; each accepted match blanks its span so later passes
// cannot double-count it. Parsing is total: anything that fails to match or
// resolve simply produces no goal.
package constraint

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nutrifind/go-food-search/internal/units"
	"github.com/nutrifind/go-food-search/model"
)

// DanglingMaxSentinel is the bound assumed for a trailing <=-family
// comparator with no value ("sugar <=").
const DanglingMaxSentinel = 100000

// NutrientResolver resolves free text to a nutrient id, typically the
// knowledge base's best-fuzzy-match lookup.
type NutrientResolver interface {
	BestNutrientMatch(text string) (model.Nutrient, bool)
	DefaultUnit(n model.Nutrient) string
}

// verbalOperators rewrites spoken comparator phrases to symbols. Ordered
// longest-phrase-first so "less than or equal to" is never half-eaten by
// "less than".
var verbalOperators = []struct {
	phrase string
	symbol string
}{
	{"greater than or equal to", ">="},
	{"less than or equal to", "<="},
	{"more than or equal to", ">="},
	{"not more than", "<="},
	{"no more than", "<="},
	{"no less than", ">="},
	{"greater than", ">"},
	{"fewer than", "<"},
	{"less than", "<"},
	{"more than", ">"},
	{"at least", ">="},
	{"at most", "<="},
	{"minimum", ">="},
	{"maximum", "<="},
	{"under", "<"},
	{"below", "<"},
	{"above", ">"},
	{"over", ">"},
	{"min", ">="},
	{"max", "<="},
}

var verbalRegexps = buildVerbalRegexps()

func buildVerbalRegexps() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(verbalOperators))
	for i, vo := range verbalOperators {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(vo.phrase) + `\b`)
	}
	return res
}

const (
	opPat   = `(>=|<=|>|<)`
	numPat  = `(\d+(?:[.,]\d+)?)`
	unitPat = `(kcal|kj|cal|kilograms?|milligrams?|micrograms?|grams?|kg|mg|mcg|µg|ug|ng|gr|g)`
	namePat = `([a-zµ]+(?:[ _][a-z]+)?)`

	valuePat = numPat + `(?:\s*` + unitPat + `\b)?`
)

var (
	// OP V [U] [and] OP V [U] [of] NAME
	preDoubleRe = regexp.MustCompile(opPat + `\s*` + valuePat +
		`\s+(?:and\s+)?` + opPat + `\s*` + valuePat + `\s+(?:of\s+)?` + namePat)
	// OP V [U] NAME OP V [U]
	sandwichRe = regexp.MustCompile(opPat + `\s*` + valuePat +
		`\s+` + namePat + `\s*` + opPat + `\s*` + valuePat)
	// NAME OP V [U] [and] OP V [U]
	postDoubleRe = regexp.MustCompile(namePat + `\s*` + opPat + `\s*` + valuePat +
		`\s+(?:and\s+)?` + opPat + `\s*` + valuePat)
	// NAME OP at end of text, value missing
	danglingRe = regexp.MustCompile(namePat + `\s*` + opPat + `\s*$`)
	// NAME LO-HI [U]
	dashRangeRe = regexp.MustCompile(namePat + `\s+` + numPat + `\s*-\s*` + numPat +
		`(?:\s*` + unitPat + `\b)?`)
	// NAME OP V [U]
	opAfterRe = regexp.MustCompile(namePat + `\s*` + opPat + `\s*` + valuePat)
	// OP V [U] [of] NAME
	opFirstRe = regexp.MustCompile(opPat + `\s*` + valuePat + `\s+(?:of\s+)?` + namePat)
	// NAME V U, unit mandatory
	bareRe = regexp.MustCompile(namePat + `\s+` + numPat + `\s*` + unitPat + `\b`)
	// OP NAME, no number at all
	qualitativeRe = regexp.MustCompile(opPat + `\s*` + namePat)

	segmentSplitRe = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)
)

// Parser extracts nutrient goals from raw query text.
type Parser struct {
	resolver NutrientResolver
}

// New creates a constraint parser backed by the given nutrient resolver.
func New(resolver NutrientResolver) *Parser {
	return &Parser{resolver: resolver}
}

// Extract parses raw query text into consolidated nutrient goals and returns
// the residual text with all consumed constraint spans blanked out, so the
// caller can tokenize what remains as plain search text.
func (p *Parser) Extract(raw string) ([]model.NutrientGoal, string) {
	text := strings.ToLower(raw)
	for i, vo := range verbalOperators {
		text = verbalRegexps[i].ReplaceAllString(text, " "+vo.symbol+" ")
	}

	goals, residual := p.runPasses(text)

	// Fallback: a query of several independent comparator clauses can fail
	// whole-text matching; parse comma/and-separated segments on their own.
	if len(goals) == 0 && strings.Count(text, "<")+strings.Count(text, ">") >= 2 {
		segments := segmentSplitRe.Split(text, -1)
		if len(segments) > 1 {
			var segGoals []model.NutrientGoal
			var segResiduals []string
			for _, seg := range segments {
				g, r := p.runPasses(seg)
				segGoals = append(segGoals, g...)
				segResiduals = append(segResiduals, r)
			}
			if len(segGoals) > 0 {
				goals = segGoals
				residual = strings.Join(segResiduals, " ")
			}
		}
	}

	return model.ConsolidateGoals(goals), residual
}

// runPasses applies the pattern cascade once over text.
func (p *Parser) runPasses(text string) ([]model.NutrientGoal, string) {
	work := []byte(text)
	var goals []model.NutrientGoal

	goals = append(goals, p.passPreDouble(work)...)
	goals = append(goals, p.passSandwich(work)...)
	goals = append(goals, p.passPostDouble(work)...)
	goals = append(goals, p.passDangling(work)...)
	goals = append(goals, p.passDashRange(work)...)
	goals = append(goals, p.passSingleBound(work)...)
	goals = append(goals, p.passBareValueUnit(work)...)
	goals = append(goals, p.passQualitative(work)...)

	return goals, string(work)
}

// scan drives one pass: find the next match at or after the current offset,
// hand it to accept, then either blank the claimed span or step past a
// rejected match without destroying its text.
func scan(work []byte, re *regexp.Regexp, accept func(m []int) (claimStart, claimEnd int, ok bool)) {
	for offset := 0; offset < len(work); {
		m := re.FindSubmatchIndex(work[offset:])
		if m == nil {
			return
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += offset
			}
		}
		start, end, ok := accept(m)
		if !ok {
			offset = m[0] + 1
			continue
		}
		blank(work, start, end)
	}
}

// blank overwrites [start,end) with spaces so later passes skip the span.
func blank(work []byte, start, end int) {
	for i := start; i < end; i++ {
		work[i] = ' '
	}
}

// letterPrecedes reports whether the char right before pos is part of a
// word. An op-leading pattern must not fire there: the comparator belongs to
// the name on its left and a name-leading pass will claim it.
func letterPrecedes(work []byte, pos int) bool {
	if pos == 0 {
		return false
	}
	c := work[pos-1]
	return ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') || c == '_' || c >= 0x80
}

// nutrientPrecedes reports whether the word just left of pos resolves as a
// nutrient. A comparator there belongs to that name, so an op-leading pattern
// starting at pos must yield and let the name-leading pass claim it; without
// this, "protein >= 20g sugar <= 5g" would read as a sandwiched sugar range
// instead of two independent bounds.
func (p *Parser) nutrientPrecedes(work []byte, pos int) bool {
	end := pos
	for end > 0 && work[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && isNameByte(work[start-1]) {
		start--
	}
	if start == end {
		return false
	}
	candidate := string(work[start:end])
	if rejectName(candidate) {
		return false
	}
	_, ok := p.resolver.BestNutrientMatch(candidate)
	return ok
}

// isNameByte reports whether b can occur inside a nutrient name word.
func isNameByte(b byte) bool {
	return ('a' <= b && b <= 'z') || b == '_' || b >= 0x80
}

// rejectName filters candidates that must never resolve as a nutrient:
// anything mentioning "ph" is reserved for the pH subsystem, and composite
// phrases are ambiguous.
func rejectName(candidate string) bool {
	return candidate == "" || strings.Contains(candidate, "ph") ||
		strings.Contains(candidate, " and ") || strings.Contains(candidate, " or ")
}

// resolveTrailingName resolves a name span that ends its pattern. When the
// greedy two-word candidate fails, the first word alone is retried and the
// claimed span shrinks to it.
func (p *Parser) resolveTrailingName(work []byte, start, end int) (model.Nutrient, int, bool) {
	candidate := strings.TrimSpace(string(work[start:end]))
	if rejectName(candidate) {
		return "", end, false
	}
	if n, ok := p.resolver.BestNutrientMatch(candidate); ok {
		return n, end, true
	}
	if i := strings.IndexAny(candidate, " _"); i > 0 {
		first := candidate[:i]
		if !rejectName(first) {
			if n, ok := p.resolver.BestNutrientMatch(first); ok {
				return n, start + i, true
			}
		}
	}
	return "", end, false
}

// resolveLeadingName resolves a name span that starts its pattern. The word
// adjacent to the comparator is the nutrient, so the fallback retries the
// last word and the claimed span shrinks from the left ("apple protein >= 20"
// keeps "apple" as text).
func (p *Parser) resolveLeadingName(work []byte, start, end int) (model.Nutrient, int, bool) {
	candidate := strings.TrimSpace(string(work[start:end]))
	if rejectName(candidate) {
		return "", start, false
	}
	if n, ok := p.resolver.BestNutrientMatch(candidate); ok {
		return n, start, true
	}
	if i := strings.LastIndexAny(candidate, " _"); i > 0 {
		last := candidate[i+1:]
		if !rejectName(last) {
			if n, ok := p.resolver.BestNutrientMatch(last); ok {
				return n, end - len(last), true
			}
		}
	}
	return "", start, false
}

// resolveExactName resolves a mid-pattern name with no shrinking fallback.
func (p *Parser) resolveExactName(work []byte, start, end int) (model.Nutrient, bool) {
	candidate := strings.TrimSpace(string(work[start:end]))
	if rejectName(candidate) {
		return "", false
	}
	return p.resolver.BestNutrientMatch(candidate)
}

// goalFor builds a constraint from a comparator symbol and a unit-normalized
// value.
func (p *Parser) goalFor(n model.Nutrient, op string, value float64, unit string) model.NutrientGoal {
	v := units.Normalize(value, unit, p.resolver.DefaultUnit(n))
	var c model.Constraint
	switch op {
	case ">=":
		c = model.Min(v)
	case "<=":
		c = model.Max(v)
	case ">":
		c = model.StrictMin(v)
	case "<":
		c = model.StrictMax(v)
	}
	return model.NutrientGoal{Nutrient: n, Constraint: c}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v, err == nil
}

// group returns the text of capture group g, or "" when it did not match.
func group(work []byte, m []int, g int) string {
	if m[2*g] < 0 {
		return ""
	}
	return string(work[m[2*g]:m[2*g+1]])
}

func (p *Parser) passPreDouble(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal
	scan(work, preDoubleRe, func(m []int) (int, int, bool) {
		if letterPrecedes(work, m[0]) || p.nutrientPrecedes(work, m[0]) {
			return 0, 0, false
		}
		op1, op2 := group(work, m, 1), group(work, m, 4)
		v1, ok1 := parseNumber(group(work, m, 2))
		v2, ok2 := parseNumber(group(work, m, 5))
		n, nameEnd, okName := p.resolveTrailingName(work, m[14], m[15])
		if !ok1 || !ok2 || !okName {
			return 0, 0, false
		}
		goals = append(goals,
			p.goalFor(n, op1, v1, group(work, m, 3)),
			p.goalFor(n, op2, v2, group(work, m, 6)))
		return m[0], nameEnd, true
	})
	return goals
}

func (p *Parser) passSandwich(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal
	scan(work, sandwichRe, func(m []int) (int, int, bool) {
		if letterPrecedes(work, m[0]) || p.nutrientPrecedes(work, m[0]) {
			return 0, 0, false
		}
		op1, op2 := group(work, m, 1), group(work, m, 5)
		v1, ok1 := parseNumber(group(work, m, 2))
		v2, ok2 := parseNumber(group(work, m, 6))
		n, okName := p.resolveExactName(work, m[8], m[9])
		if !ok1 || !ok2 || !okName {
			return 0, 0, false
		}
		goals = append(goals,
			p.goalFor(n, op1, v1, group(work, m, 3)),
			p.goalFor(n, op2, v2, group(work, m, 7)))
		return m[0], m[1], true
	})
	return goals
}

func (p *Parser) passPostDouble(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal
	scan(work, postDoubleRe, func(m []int) (int, int, bool) {
		op1, op2 := group(work, m, 2), group(work, m, 5)
		v1, ok1 := parseNumber(group(work, m, 3))
		v2, ok2 := parseNumber(group(work, m, 6))
		n, nameStart, okName := p.resolveLeadingName(work, m[2], m[3])
		if !ok1 || !ok2 || !okName {
			return 0, 0, false
		}
		goals = append(goals,
			p.goalFor(n, op1, v1, group(work, m, 4)),
			p.goalFor(n, op2, v2, group(work, m, 7)))
		return nameStart, m[1], true
	})
	return goals
}

func (p *Parser) passDangling(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal
	scan(work, danglingRe, func(m []int) (int, int, bool) {
		n, nameStart, okName := p.resolveLeadingName(work, m[2], m[3])
		if !okName {
			return 0, 0, false
		}
		op := group(work, m, 2)
		value := 0.0
		if op == "<=" || op == "<" {
			value = DanglingMaxSentinel
		}
		goals = append(goals, p.goalFor(n, op, value, ""))
		return nameStart, m[1], true
	})
	return goals
}

func (p *Parser) passDashRange(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal
	scan(work, dashRangeRe, func(m []int) (int, int, bool) {
		lo, ok1 := parseNumber(group(work, m, 2))
		hi, ok2 := parseNumber(group(work, m, 3))
		n, nameStart, okName := p.resolveLeadingName(work, m[2], m[3])
		if !ok1 || !ok2 || !okName {
			return 0, 0, false
		}
		unit := group(work, m, 4)
		goals = append(goals,
			p.goalFor(n, ">=", lo, unit),
			p.goalFor(n, "<=", hi, unit))
		return nameStart, m[1], true
	})
	return goals
}

func (p *Parser) passSingleBound(work []byte) []model.NutrientGoal {
	var goals []model.NutrientGoal

	// Name-leading first: "protein >= 20" must win over a later op-leading
	// reading that would bind the value to the next nutrient instead.
	scan(work, opAfterRe, func(m []int) (int, int, bool) {
		op := group(work, m, 2)
		v, okV := parseNumber(group(work, m, 3))
		n, nameStart, okName := p.resolveLeadingName(work, m[2], m[3])
		if !okV || !okName {
			return 0, 0, false
		}
		goals = append(goals, p.goalFor(n, op, v, group(work, m, 4)))
		return nameStart, m[1], true
	})

	scan(work, opFirstRe, func(m []int) (int, int, bool) {
		if letterPrecedes(work, m[0]) {
			return 0, 0, false
		}
		op := group(work, m, 1)
		v, okV := parseNumber(group(work, m, 2))
		n, nameEnd, okName := p.resolveTrailingName(work, m[8], m[9])
		if !okV || !okName {
			return 0, 0, false
		}
		goals = append(goals, p.goalFor(n, op, v, group(work, m, 3)))
		return m[0], nameEnd, true
	})

	return goals
}

func (p *Parser) passBareValueUnit(work []byte) []model.NutrientGoal {
	// NAME V UNIT with an explicit unit implies a minimum.
	var goals []model.NutrientGoal
	scan(work, bareRe, func(m []int) (int, int, bool) {
		v, okV := parseNumber(group(work, m, 2))
		n, nameStart, okName := p.resolveLeadingName(work, m[2], m[3])
		if !okV || !okName {
			return 0, 0, false
		}
		goals = append(goals, p.goalFor(n, ">=", v, group(work, m, 3)))
		return nameStart, m[1], true
	})
	return goals
}

func (p *Parser) passQualitative(work []byte) []model.NutrientGoal {
	// OP NAME with no number: qualitative low/high rather than a threshold.
	var goals []model.NutrientGoal
	scan(work, qualitativeRe, func(m []int) (int, int, bool) {
		if letterPrecedes(work, m[0]) {
			return 0, 0, false
		}
		n, nameEnd, okName := p.resolveTrailingName(work, m[4], m[5])
		if !okName {
			return 0, 0, false
		}
		c := model.High()
		if op := group(work, m, 1); op == "<" || op == "<=" {
			c = model.Low()
		}
		goals = append(goals, model.NutrientGoal{Nutrient: n, Constraint: c})
		return m[0], nameEnd, true
	})
	return goals
}
