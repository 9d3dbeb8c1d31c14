// Package cast decides how a spell or action resolves: which resource pool
// pays for it, what the chosen modifiers cost, and which rolls it produces.
// Resolution is a pure function over the sheet snapshot: it returns cost
// deltas and roll requests and mutates nothing itself.
package cast

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ComponentKind tags a spell sub-effect.
type ComponentKind string

const (
	KindDamage  ComponentKind = "damage"
	KindHealing ComponentKind = "healing"
	KindTempHP  ComponentKind = "temp_hp"
)

// Component is one declared damage/healing sub-effect of a spell.
type Component struct {
	Kind       ComponentKind `yaml:"kind"`
	Formula    string        `yaml:"formula"`
	DamageType string        `yaml:"damage_type"`
}

// Spell is the declarative description of a castable effect.
type Spell struct {
	Name          string      `yaml:"name"`
	Level         int         `yaml:"level"` // 0 = cantrip
	FromItem      bool        `yaml:"from_item"`
	Levelless     bool        `yaml:"levelless"`
	Concentration bool        `yaml:"concentration"`
	Manual        bool        `yaml:"manual"`
	Attack        bool        `yaml:"attack"`
	Components    []Component `yaml:"components"`
}

// IsCantrip reports whether the spell casts without a slot.
func (s *Spell) IsCantrip() bool { return s.Level == 0 && !s.Levelless }

// Options carries the caller's choices for one cast.
type Options struct {
	// SlotKey is the chosen resource pool ("slot3", "pact"). Empty requests
	// upcast selection upstream.
	SlotKey string
	// Metamagic names the chosen modifier options.
	Metamagic []string
	// NoCost skips resource consumption entirely (recast while already
	// maintaining this effect).
	NoCost bool
}

// Phase is the cast state machine. Once ResourceCommitted is entered there is
// no path back to a cancelled state: the rolls will be emitted.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResourceSelectionPending
	PhaseResourceCommitted
	PhaseRollsEmitted
	PhaseDone
	PhaseMaintainedEffectTracked
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResourceSelectionPending:
		return "resource-selection-pending"
	case PhaseResourceCommitted:
		return "resource-committed"
	case PhaseRollsEmitted:
		return "rolls-emitted"
	case PhaseDone:
		return "done"
	case PhaseMaintainedEffectTracked:
		return "maintained-effect-tracked"
	}
	return "unknown"
}

// SlotOption is one offered resource pool for a cast.
type SlotOption struct {
	Key       string
	Level     int
	Available int
}

// LoadSpell reads a spell YAML file.
func LoadSpell(path string) (*Spell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spell %s: %w", path, err)
	}
	defer f.Close()

	var s Spell
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode spell %s: %w", path, err)
	}
	return &s, nil
}
