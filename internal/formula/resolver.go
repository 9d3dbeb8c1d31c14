// Package formula rewrites sheet formulas into literal numbers. Resolution is
// fail-soft end to end: a token that cannot be resolved stays verbatim in the
// output so the dice layer can still render a partially-resolved formula.
// Dice notation ("2d6") is never touched here.
package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/mathexpr"
)

// Resolve runs the substitution passes over formula against the sheet.
// It never fails; the worst case is the input string returned unchanged.
//
// Formulas containing the reserved slotLevel token are returned completely
// unchanged: the cast engine substitutes the chosen slot level later, and
// resolving around it would corrupt upcast scaling.
func Resolve(formula string, sheet *character.Sheet) string {
	if strings.Contains(strings.ToLower(formula), "slotlevel") {
		return formula
	}

	if val, ok := bareVariable(formula, sheet); ok {
		return val
	}

	out := resolveParenRefs(formula, sheet)
	out = resolveBrackets(out, sheet)
	out = resolveBraces(out, sheet)

	// Cosmetic final step: markdown bold markers never survive resolution.
	return strings.ReplaceAll(out, "**", "")
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// bareVariable short-circuits the pipeline when the whole trimmed formula is
// a single identifier with a direct value.
func bareVariable(formula string, sheet *character.Sheet) (string, bool) {
	name := strings.TrimSpace(formula)
	if !identRe.MatchString(name) {
		return "", false
	}
	if v, ok := sheet.Variable(name); ok {
		return v.String(), true
	}
	return "", false
}

var parenRefRe = regexp.MustCompile(`\(#?([A-Za-z_][A-Za-z0-9_.]*)\)`)

// resolveParenRefs replaces (#name.path)-style and (name)-style references
// with their resolved numeric value.
func resolveParenRefs(formula string, sheet *character.Sheet) string {
	return parenRefRe.ReplaceAllStringFunc(formula, func(span string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(span, "("), ")")
		name = strings.TrimPrefix(name, "#")
		if val, ok := lookupRef(name, sheet); ok {
			return formatNumber(val)
		}
		return span
	})
}

// abilityAliases maps three-letter shorthand to full ability names.
var abilityAliases = map[string]string{
	"str": "strength",
	"dex": "dexterity",
	"con": "constitution",
	"int": "intelligence",
	"wis": "wisdom",
	"cha": "charisma",
}

func abilityName(name string) string {
	lower := strings.ToLower(name)
	if full, ok := abilityAliases[lower]; ok {
		return full
	}
	return lower
}

// lookupRef resolves a reference name through the ordered fallback chain:
// direct variable, ability modifier, ability score, proficiency bonus, the
// synthetic spellList references, dotted-to-camelCase, then dot-stripped.
func lookupRef(name string, sheet *character.Sheet) (float64, bool) {
	if v, ok := sheet.NumberVariable(name); ok {
		return v, true
	}

	if strings.HasSuffix(name, ".modifier") {
		base := abilityName(strings.TrimSuffix(name, ".modifier"))
		if mod, ok := sheet.AbilityModifier(base); ok {
			return float64(mod), true
		}
	}

	if score, ok := sheet.Abilities[abilityName(name)]; ok {
		return float64(score), true
	}

	switch strings.ToLower(name) {
	case "proficiency", "proficiencybonus", "proficiency.bonus":
		return float64(sheet.ProficiencyBonus), true
	case "spelllist.abilitymod":
		return float64(castingModifier(sheet)), true
	case "spelllist.dc":
		return float64(8 + sheet.ProficiencyBonus + castingModifier(sheet)), true
	case "spelllist.attackbonus":
		return float64(sheet.ProficiencyBonus + castingModifier(sheet)), true
	}

	if strings.Contains(name, ".") {
		if v, ok := sheet.NumberVariable(dottedToCamel(name)); ok {
			return v, true
		}
		if v, ok := sheet.NumberVariable(strings.ReplaceAll(name, ".", "")); ok {
			return v, true
		}
	}

	return 0, false
}

// castingModifier derives the spellcasting ability modifier from the class:
// Wisdom for divine and nature casters, Intelligence for arcane scholars,
// Charisma for charismatic casters.
func castingModifier(sheet *character.Sheet) int {
	var ability string
	switch strings.ToLower(sheet.Class) {
	case "cleric", "druid", "ranger", "monk":
		ability = "wisdom"
	case "wizard", "artificer":
		ability = "intelligence"
	case "bard", "sorcerer", "warlock", "paladin":
		ability = "charisma"
	default:
		ability = "intelligence"
	}
	mod, _ := sheet.AbilityModifier(ability)
	return mod
}

// dottedToCamel converts "class.level" to "classLevel".
func dottedToCamel(name string) string {
	parts := strings.Split(name, ".")
	out := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out += strings.ToUpper(p[:1]) + p[1:]
	}
	return out
}

var (
	bracketRe = regexp.MustCompile(`\[([^\[\]]*)\]`)
	braceRe   = regexp.MustCompile(`\{([^{}]*)\}`)
	wrapperRe = regexp.MustCompile(`^(ceil|floor|round|abs)\((.*)\)$`)
	spanIdent = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_.]*`)
)

// resolveBrackets evaluates every [...] math span: optional rounding wrapper,
// identifier substitution, arithmetic evaluation, numeric splice. A span that
// cannot be evaluated survives verbatim.
func resolveBrackets(formula string, sheet *character.Sheet) string {
	return bracketRe.ReplaceAllStringFunc(formula, func(span string) string {
		inner := span[1 : len(span)-1]

		// The wrapper strip only applies when the call really spans the whole
		// bracket: "floor(a)+floor(b)" also matches the regex, but its inner
		// capture has unbalanced parentheses and belongs to the evaluator.
		wrapper := ""
		if m := wrapperRe.FindStringSubmatch(strings.TrimSpace(inner)); m != nil && balanced(m[2]) {
			wrapper = m[1]
			inner = m[2]
		}

		substituted, complete := substituteIdents(inner, sheet)
		if !complete {
			return span
		}
		val, err := mathexpr.Evaluate(substituted)
		if err != nil {
			return span
		}
		switch wrapper {
		case "ceil":
			val = math.Ceil(val)
		case "floor":
			val = math.Floor(val)
		case "round":
			val = math.Round(val)
		case "abs":
			val = math.Abs(val)
		}
		return formatNumber(val)
	})
}

// resolveBraces evaluates {...} inline calculations. The span is evaluated
// only when the substituted text still contains a digit or an operator;
// otherwise the original brace text is preserved.
func resolveBraces(formula string, sheet *character.Sheet) string {
	return braceRe.ReplaceAllStringFunc(formula, func(span string) string {
		inner := span[1 : len(span)-1]
		substituted, complete := substituteIdents(inner, sheet)
		if !complete || !strings.ContainsAny(substituted, "0123456789+-*/") {
			return span
		}
		val, err := mathexpr.Evaluate(substituted)
		if err != nil {
			return span
		}
		return formatNumber(val)
	})
}

// evaluatorFuncs are grammar keywords inside math spans, never identifiers
// to substitute.
var evaluatorFuncs = map[string]bool{
	"floor": true, "ceil": true, "round": true, "max": true, "min": true,
}

// substituteIdents replaces every identifier in span with its resolved value.
// Replacement happens on whole identifier tokens at the positions the scan
// found them, so a short name never corrupts a longer one ("level" inside
// "classLevel") or a grammar keyword ("a" inside "max"). It reports whether
// all identifiers resolved.
func substituteIdents(span string, sheet *character.Sheet) (string, bool) {
	complete := true
	out := spanIdent.ReplaceAllStringFunc(span, func(id string) string {
		if evaluatorFuncs[strings.ToLower(id)] {
			return id
		}
		val, ok := lookupRef(id, sheet)
		if !ok {
			complete = false
			return id
		}
		return formatNumber(val)
	})
	return out, complete
}

// balanced reports whether every parenthesis in s closes at a valid depth.
func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// formatNumber renders integral values without a decimal point.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
