package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suderio/arcane-ledger/internal/character"
)

func testSheet() *character.Sheet {
	s := character.NewSheet("Mira")
	s.Class = "sorcerer"
	s.Level = 5
	s.ProficiencyBonus = 3
	s.Abilities["strength"] = 8
	s.Abilities["dexterity"] = 14
	s.Abilities["charisma"] = 18
	s.Variables["classLevel"] = character.Number(5)
	s.Variables["level"] = character.Number(5)
	s.Variables["kiPoints"] = character.Number(3)
	s.Variables["rage"] = character.Bool(false)
	return s
}

func TestResolveBareVariable(t *testing.T) {
	s := testSheet()
	assert.Equal(t, "5", Resolve("classLevel", s))
	assert.Equal(t, "5", Resolve("  classLevel  ", s))
	assert.Equal(t, "false", Resolve("rage", s))
}

func TestResolveParenRefs(t *testing.T) {
	s := testSheet()

	assert.Equal(t, "1d20+2", Resolve("1d20+(dex.modifier)", s))
	assert.Equal(t, "1d20+4", Resolve("1d20+(#cha.modifier)", s))
	assert.Equal(t, "14", Resolve("(dexterity)", s))
	assert.Equal(t, "1d20+3", Resolve("1d20+(proficiency)", s))
}

func TestResolveSpellListRefs(t *testing.T) {
	s := testSheet()

	// Sorcerer casts off Charisma 18 (+4), proficiency +3.
	assert.Equal(t, "4", Resolve("(spellList.abilityMod)", s))
	assert.Equal(t, "15", Resolve("(spellList.dc)", s))
	assert.Equal(t, "1d20+7", Resolve("1d20+(spellList.attackBonus)", s))
}

func TestResolveSpellListByClass(t *testing.T) {
	s := testSheet()
	s.Class = "cleric"
	s.Abilities["wisdom"] = 16
	assert.Equal(t, "14", Resolve("(spellList.dc)", s)) // 8 + 3 + mod(16)

	s.Class = "wizard"
	s.Abilities["intelligence"] = 20
	assert.Equal(t, "16", Resolve("(spellList.dc)", s))
}

func TestResolveDottedFallbacks(t *testing.T) {
	s := testSheet()
	// class.level has no direct entry; camel-case fallback finds classLevel.
	assert.Equal(t, "5", Resolve("(class.level)", s))
}

func TestResolveBrackets(t *testing.T) {
	s := testSheet()

	assert.Equal(t, "3d8", Resolve("[ceil(classLevel/2)]d8", s))
	assert.Equal(t, "2d6+2", Resolve("2d6+[floor(classLevel/2)]", s))
	assert.Equal(t, "5", Resolve("[classLevel]", s))
	assert.Equal(t, "1", Resolve("[abs(2-3)]", s))
	assert.Equal(t, "8", Resolve("[max(kiPoints, classLevel+3)]", s))
}

func TestResolveBraces(t *testing.T) {
	s := testSheet()

	assert.Equal(t, "8", Resolve("{classLevel + 3}", s))
	// No digit or operator after substitution: brace text survives.
	assert.Equal(t, "{wildShape}", Resolve("{wildShape}", s))
}

func TestResolveFailSoft(t *testing.T) {
	s := testSheet()

	out := Resolve("unknownVar+2", s)
	assert.Contains(t, out, "unknownVar")
	assert.Equal(t, "unknownVar+2", out)

	// An unresolvable bracket span survives verbatim.
	assert.Equal(t, "[mysteryValue*2]d6", Resolve("[mysteryValue*2]d6", s))
}

func TestResolveLeavesDiceNotation(t *testing.T) {
	s := testSheet()
	assert.Equal(t, "2d6+4", Resolve("2d6+(cha.modifier)", s))
	assert.Equal(t, "8d6", Resolve("8d6", s))
}

func TestResolveSlotLevelReserved(t *testing.T) {
	s := testSheet()

	assert.Equal(t, "slotLeveld6", Resolve("slotLeveld6", s))
	assert.Equal(t, "[slotLevel+1]d8", Resolve("[slotLevel+1]d8", s))
	// Case-insensitive, and even bold markers survive untouched.
	assert.Equal(t, "**SLOTLEVEL**d6", Resolve("**SLOTLEVEL**d6", s))
}

func TestResolveStripsBoldMarkers(t *testing.T) {
	s := testSheet()
	assert.Equal(t, "2d6+4", Resolve("**2d6**+(cha.modifier)", s))
}

func TestResolveIdempotent(t *testing.T) {
	s := testSheet()
	inputs := []string{
		"1d20+(dex.modifier)",
		"[ceil(classLevel/2)]d8",
		"unknownVar+2",
		"{classLevel + 3}",
		"2d6+(spellList.attackBonus)",
	}
	for _, in := range inputs {
		once := Resolve(in, s)
		assert.Equal(t, once, Resolve(once, s), "input %q", in)
	}
}

func TestResolveLongestNameFirst(t *testing.T) {
	s := testSheet()
	// classLevel must not be corrupted by the shorter "level" variable.
	assert.Equal(t, "10", Resolve("[classLevel+level]", s))
}

func TestResolveBracketsTwoRoundingCalls(t *testing.T) {
	s := testSheet()
	// Neither call wraps the whole span, so both belong to the evaluator:
	// floor(5/2) + floor(3/2) = 3.
	assert.Equal(t, "3d6", Resolve("[floor(classLevel/2)+floor(kiPoints/2)]d6", s))
	assert.Equal(t, "2", Resolve("[ceil(kiPoints/2)*floor(classLevel/4)]", s))
}

func TestResolveShortVariableNearKeyword(t *testing.T) {
	s := testSheet()
	s.Variables["a"] = character.Number(4)
	// Substituting "a" must not rewrite the letter inside "max".
	assert.Equal(t, "4", Resolve("[max(a, 2)]", s))
}
