package session_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/arcane-ledger/internal/journal"
	"github.com/suderio/arcane-ledger/internal/relay"
	"github.com/suderio/arcane-ledger/internal/roll"
	"github.com/suderio/arcane-ledger/internal/session"
)

const testSheet = `
name: Mira
class: sorcerer
level: 5
proficiency_bonus: 3
abilities:
  strength: 8
  dexterity: 14
  charisma: 18
variables:
  stealth: 5
resources:
  - name: Sorcery Points
    key: sorceryPoints
    current: 5
    max: 5
spell_slots:
  1: {current: 4, max: 4}
  3: {current: 2, max: 4}
`

const fireBolt = `
name: Fire Bolt
level: 0
attack: true
components:
  - kind: damage
    formula: 2d10
    damage_type: fire
`

const fireball = `
name: Fireball
level: 3
components:
  - kind: damage
    formula: "[slotLevel+5]d6"
    damage_type: fire
`

func newTestSession(t *testing.T) (*session.Session, *relay.Buffer, session.Config) {
	t.Helper()
	dir := t.TempDir()

	sheetPath := filepath.Join(dir, "sheet.yaml")
	require.NoError(t, os.WriteFile(sheetPath, []byte(testSheet), 0644))

	spellsDir := filepath.Join(dir, "spells")
	require.NoError(t, os.MkdirAll(spellsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(spellsDir, "fire-bolt.yaml"), []byte(fireBolt), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(spellsDir, "fireball.yaml"), []byte(fireball), 0644))

	store, err := journal.NewStore(filepath.Join(dir, "journal.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	buf := &relay.Buffer{}
	cfg := session.Config{
		SheetPath: sheetPath,
		SpellsDir: spellsDir,
		Store:     store,
		Relay:     buf,
	}

	s, err := session.NewSession(cfg)
	require.NoError(t, err)
	return s, buf, cfg
}

func TestExecuteRoll(t *testing.T) {
	s, buf, _ := newTestSession(t)

	roll.MockDice([]int{2, 3})
	defer roll.ResetMockDice()

	out, err := s.Execute("roll 2d6+3")
	require.NoError(t, err)
	assert.Contains(t, out, "= 8")

	require.Len(t, buf.Messages, 1)
	assert.Equal(t, 8, buf.Messages[0].Total)
}

func TestExecuteRollWithLabel(t *testing.T) {
	s, _, _ := newTestSession(t)

	roll.MockDice([]int{4, 4, 4})
	defer roll.ResetMockDice()

	out, err := s.Execute(`roll label: "Sneak Attack" 3d6`)
	require.NoError(t, err)
	assert.Contains(t, out, "Sneak Attack")
	assert.Contains(t, out, "= 12")
}

func TestExecuteCheck(t *testing.T) {
	s, _, _ := newTestSession(t)

	roll.MockDice([]int{10})
	defer roll.ResetMockDice()

	out, err := s.Execute("check stealth")
	require.NoError(t, err)
	assert.Contains(t, out, "stealth Check")
	assert.Contains(t, out, "= 15")
}

func TestExecuteCastCantrip(t *testing.T) {
	s, buf, _ := newTestSession(t)

	// attack d20, then 2d10 damage
	roll.MockDice([]int{12, 6, 4})
	defer roll.ResetMockDice()

	out, err := s.Execute(`cast "Fire Bolt"`)
	require.NoError(t, err)

	// charisma 18 and proficiency 3 give an attack bonus of +7
	assert.Contains(t, out, "Fire Bolt Attack")
	assert.Contains(t, out, "= 19")
	assert.Contains(t, out, "Damage (fire)")
	assert.Contains(t, out, "= 10")

	require.Len(t, buf.Messages, 2)
	assert.Equal(t, 4, s.Sheet().SpellSlots[1].Current, "cantrip must not spend slots")
}

func TestExecuteCastNeedsSlot(t *testing.T) {
	s, _, _ := newTestSession(t)

	out, err := s.Execute("cast Fireball")
	require.NoError(t, err)
	assert.Contains(t, out, "level 3 or higher")
	assert.Contains(t, out, "slot: 3")
	assert.Equal(t, 2, s.Sheet().SpellSlots[3].Current, "prompting must not spend slots")
}

func TestExecuteCastWithSlot(t *testing.T) {
	s, _, _ := newTestSession(t)

	roll.MockDice([]int{3, 3, 3, 3, 3, 3, 3, 3})
	defer roll.ResetMockDice()

	out, err := s.Execute("cast Fireball slot: 3")
	require.NoError(t, err)
	assert.Contains(t, out, "slot3 -1")
	assert.Contains(t, out, "8d6")
	assert.Contains(t, out, "= 24")
	assert.Equal(t, 1, s.Sheet().SpellSlots[3].Current)
}

func TestCastPersistsAcrossSessions(t *testing.T) {
	s, _, cfg := newTestSession(t)

	roll.MockDice([]int{3, 3, 3, 3, 3, 3, 3, 3})
	defer roll.ResetMockDice()

	_, err := s.Execute("cast Fireball slot: 3")
	require.NoError(t, err)

	reloaded, err := session.NewSession(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Sheet().SpellSlots[3].Current)
}

func TestExecuteAdvantage(t *testing.T) {
	s, buf, _ := newTestSession(t)

	_, err := s.Execute("advantage")
	require.NoError(t, err)

	roll.MockDice([]int{5, 18})
	defer roll.ResetMockDice()

	_, err = s.Execute("roll 1d20+2")
	require.NoError(t, err)

	require.Len(t, buf.Messages, 1)
	assert.Contains(t, buf.Messages[0].Formula, "2d20kh1")
	assert.Equal(t, 20, buf.Messages[0].Total)

	// one-shot: the next roll is back to normal
	assert.Equal(t, roll.Normal, s.State().Advantage)
}

func TestExecuteRest(t *testing.T) {
	s, _, _ := newTestSession(t)

	roll.MockDice([]int{3, 3, 3, 3, 3, 3, 3, 3})
	defer roll.ResetMockDice()

	_, err := s.Execute("cast Fireball slot: 3")
	require.NoError(t, err)
	require.Equal(t, 1, s.Sheet().SpellSlots[3].Current)

	out, err := s.Execute("rest")
	require.NoError(t, err)
	assert.Contains(t, out, "restored")
	assert.Equal(t, 4, s.Sheet().SpellSlots[3].Current)
}

func TestExecuteSheet(t *testing.T) {
	s, _, _ := newTestSession(t)

	out, err := s.Execute("sheet")
	require.NoError(t, err)
	assert.Contains(t, out, "Mira, level 5 sorcerer")
	assert.Contains(t, out, "sorceryPoints: 5/5")
	assert.Contains(t, out, "slot3: 2/4")
}

func TestExecuteUseWithoutRoll(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Execute("use Inspiration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roll first")
}

func TestExecuteUseOptionalEffect(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.State().Optional = append(s.State().Optional, roll.Effect{
		Name:       "Inspiration",
		Categories: []roll.Category{roll.CategoryCheck},
		Modifier:   "1d4",
	})

	roll.MockDice([]int{10})
	defer roll.ResetMockDice()

	out, err := s.Execute("check stealth")
	require.NoError(t, err)
	assert.Contains(t, out, "Available: Inspiration")

	roll.MockDice([]int{3})
	out, err = s.Execute("use Inspiration")
	require.NoError(t, err)
	assert.Contains(t, out, "= 3")
	assert.Empty(t, s.State().Optional)
}

func TestExecuteDrop(t *testing.T) {
	s, _, _ := newTestSession(t)

	out, err := s.Execute("drop")
	require.NoError(t, err)
	assert.Contains(t, out, "Not concentrating")

	s.State().Concentration = "Haste"
	out, err = s.Execute("drop")
	require.NoError(t, err)
	assert.Contains(t, out, "Haste ended")
	assert.Empty(t, s.State().Concentration)
}

func TestExecuteUnknownCommand(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Execute("frobnicate the goblin")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "understand"))
}

func TestExecuteUnknownSpell(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Execute("cast Wish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown spell")
}
