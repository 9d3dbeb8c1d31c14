// Package character holds the authoritative sheet snapshot the resolution
// engine reads. The surrounding application owns and persists it; engine
// packages only read it and hand back ResourceCost deltas for the caller
// to apply through ApplyCosts.
package character

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Variable is one entry in the sheet's flat variable bag. Formulas reference
// variables by bare name, so every derived value a formula may need lives
// here under a string key. The three concrete kinds are Number, Bool and Text.
type Variable interface {
	isVariable()
	String() string
}

// Number is a numeric variable.
type Number float64

func (Number) isVariable() {}
func (n Number) String() string {
	if n == Number(math.Trunc(float64(n))) {
		return strconv.Itoa(int(n))
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Bool is a boolean variable.
type Bool bool

func (Bool) isVariable() {}
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Text is a free-form string variable.
type Text string

func (Text) isVariable()      {}
func (t Text) String() string { return string(t) }

// Resource is a named consumable counter (ki points, sorcery points, uses of
// a feature). Key is the stable identifier formulas and costs refer to.
type Resource struct {
	Name    string `yaml:"name"`
	Key     string `yaml:"key"`
	Current int    `yaml:"current"`
	Max     int    `yaml:"max"`
}

// Slot is one spell-slot counter at a single level.
type Slot struct {
	Current int `yaml:"current"`
	Max     int `yaml:"max"`
}

// PactSlots is the alternative slot pool with its own renewal behavior and a
// single effective level. Level 0 means the level is not tracked directly and
// must be derived from the pactLevel variable or the character level.
type PactSlots struct {
	Level   int `yaml:"level"`
	Current int `yaml:"current"`
	Max     int `yaml:"max"`
}

// Sheet is the character snapshot consumed by the engine.
type Sheet struct {
	Name             string              `yaml:"name"`
	Class            string              `yaml:"class"`
	Level            int                 `yaml:"level"`
	Abilities        map[string]int      `yaml:"abilities"` // full lowercase names: "strength", "dexterity", ...
	ProficiencyBonus int                 `yaml:"proficiency_bonus"`
	Variables        VariableBag         `yaml:"variables"`
	Resources        []Resource          `yaml:"resources"`
	SpellSlots       map[int]Slot        `yaml:"spell_slots"` // level 1..9
	Pact             *PactSlots          `yaml:"pact"`
}

// NewSheet creates a Sheet with all maps initialized to avoid nil-map panics.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Name:       name,
		Abilities:  make(map[string]int),
		Variables:  make(VariableBag),
		Resources:  make([]Resource, 0),
		SpellSlots: make(map[int]Slot),
	}
}

// AbilityModifier derives the modifier for a named ability. The division
// floors toward negative infinity, so a score of 7 yields -2.
func (s *Sheet) AbilityModifier(name string) (int, bool) {
	score, ok := s.Abilities[strings.ToLower(name)]
	if !ok {
		return 0, false
	}
	return ScoreModifier(score), true
}

// ScoreModifier converts a raw ability score to its modifier.
func ScoreModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// Resource finds a resource by key.
func (s *Sheet) Resource(key string) (*Resource, bool) {
	for i := range s.Resources {
		if s.Resources[i].Key == key {
			return &s.Resources[i], true
		}
	}
	return nil, false
}

// Variable looks up a variable by exact name.
func (s *Sheet) Variable(name string) (Variable, bool) {
	v, ok := s.Variables[name]
	return v, ok
}

// NumberVariable looks up a variable and returns it only when numeric.
func (s *Sheet) NumberVariable(name string) (float64, bool) {
	v, ok := s.Variables[name]
	if !ok {
		return 0, false
	}
	n, ok := v.(Number)
	return float64(n), ok
}

// ResourceCost is a resolved deduction to be applied atomically by the caller
// after a roll or cast commits. Negative amounts restore.
type ResourceCost struct {
	Key    string `json:"key"`
	Amount int    `json:"amount"`
}

// Cost keys for the two slot pools. Everything else addresses Resource.Key.
const PactKey = "pact"

// SlotKey builds the cost key for a leveled slot.
func SlotKey(level int) string {
	return fmt.Sprintf("slot%d", level)
}

// ParseSlotKey reports whether key addresses a leveled slot and at what level.
func ParseSlotKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "slot") {
		return 0, false
	}
	level, err := strconv.Atoi(key[len("slot"):])
	if err != nil || level < 1 || level > 9 {
		return 0, false
	}
	return level, true
}

// InsufficientResourceError reports a deduction that would break the
// 0 <= Current <= Max invariant. The whole batch it belonged to is rejected.
type InsufficientResourceError struct {
	Resource  string
	Required  int
	Available int
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: need %d, have %d", e.Resource, e.Required, e.Available)
}

// ApplyCosts applies a delta list atomically. Every cost is validated against
// the invariant before anything is written, so a failed batch leaves the sheet
// completely untouched. Violations are rejected, never clamped.
func (s *Sheet) ApplyCosts(costs []ResourceCost) error {
	// Validation pass stages every write, commit pass runs them.
	type write struct {
		fn  func(int)
		val int
	}
	staged := make([]write, 0, len(costs))
	// Net the deltas per key first so two costs against the same pool are
	// judged together.
	net := make(map[string]int)
	order := make([]string, 0, len(costs))
	for _, c := range costs {
		if _, seen := net[c.Key]; !seen {
			order = append(order, c.Key)
		}
		net[c.Key] += c.Amount
	}

	for _, key := range order {
		amount := net[key]
		switch {
		case key == PactKey:
			if s.Pact == nil {
				return &InsufficientResourceError{Resource: "pact slots", Required: amount, Available: 0}
			}
			after := s.Pact.Current - amount
			if after < 0 || after > s.Pact.Max {
				return &InsufficientResourceError{Resource: "pact slots", Required: amount, Available: s.Pact.Current}
			}
			staged = append(staged, write{fn: func(v int) { s.Pact.Current = v }, val: after})
		default:
			if level, ok := ParseSlotKey(key); ok {
				slot := s.SpellSlots[level]
				after := slot.Current - amount
				if after < 0 || after > slot.Max {
					return &InsufficientResourceError{
						Resource:  fmt.Sprintf("level %d slots", level),
						Required:  amount,
						Available: slot.Current,
					}
				}
				lvl := level
				staged = append(staged, write{fn: func(v int) {
					sl := s.SpellSlots[lvl]
					sl.Current = v
					s.SpellSlots[lvl] = sl
				}, val: after})
				continue
			}
			res, ok := s.Resource(key)
			if !ok {
				return &InsufficientResourceError{Resource: key, Required: amount, Available: 0}
			}
			after := res.Current - amount
			if after < 0 || after > res.Max {
				return &InsufficientResourceError{Resource: res.Name, Required: amount, Available: res.Current}
			}
			r := res
			staged = append(staged, write{fn: func(v int) { r.Current = v }, val: after})
		}
	}

	// Commit pass: nothing below can fail.
	for _, w := range staged {
		w.fn(w.val)
	}
	return nil
}
