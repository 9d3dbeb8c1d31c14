package character

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSheet = `
name: Mira
class: sorcerer
level: 5
proficiency_bonus: 3
abilities:
  strength: 8
  charisma: 18
variables:
  classLevel: 5
  rage: false
  fightingStyle: dueling
  kiPoints:
    value: 3
resources:
  - name: Sorcery Points
    key: sorceryPoints
    current: 5
    max: 5
spell_slots:
  1: {current: 4, max: 4}
  3: {current: 2, max: 4}
pact:
  level: 3
  current: 2
  max: 2
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mira.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSheet), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Mira", s.Name)
	assert.Equal(t, 5, s.Level)
	assert.Equal(t, 18, s.Abilities["charisma"])
	assert.Equal(t, Slot{Current: 2, Max: 4}, s.SpellSlots[3])
	require.NotNil(t, s.Pact)
	assert.Equal(t, 3, s.Pact.Level)

	// Scalar, boolean, text, and wrapped {value} shapes all normalize.
	assert.Equal(t, Number(5), s.Variables["classLevel"])
	assert.Equal(t, Bool(false), s.Variables["rage"])
	assert.Equal(t, Text("dueling"), s.Variables["fightingStyle"])
	assert.Equal(t, Number(3), s.Variables["kiPoints"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadInitializesMaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bare.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Bare\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, s.Abilities)
	assert.NotNil(t, s.Variables)
	assert.NotNil(t, s.SpellSlots)
}
