// Package roll prepares dice rolls: it applies situational modifiers to a
// resolved formula, tracks the advantage tri-state, and produces the final
// formula plus a human-readable annotation trail. It also carries the dice
// roller the companion uses to roll locally before relaying.
package roll

import "strings"

// Category is the semantic category of a roll, inferred from its label.
type Category int

const (
	CategoryOther Category = iota
	CategoryAttack
	CategorySave
	CategoryCheck
	CategoryDamage
)

func (c Category) String() string {
	switch c {
	case CategoryAttack:
		return "attack"
	case CategorySave:
		return "save"
	case CategoryCheck:
		return "check"
	case CategoryDamage:
		return "damage"
	}
	return "other"
}

// Categorize infers the roll category from keywords in the label.
func Categorize(label string) Category {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "attack") || strings.Contains(lower, "to hit"):
		return CategoryAttack
	case strings.Contains(lower, "saving") || strings.Contains(lower, "save"):
		return CategorySave
	case strings.Contains(lower, "check") || strings.Contains(lower, "skill") || strings.Contains(lower, "initiative"):
		return CategoryCheck
	case strings.Contains(lower, "damage") || strings.Contains(lower, "healing"):
		return CategoryDamage
	}
	return CategoryOther
}

// AdvantageState is the tri-state advantage flag. It is consumed by exactly
// one roll and resets to Normal immediately afterwards.
type AdvantageState int

const (
	Normal AdvantageState = iota
	Advantage
	Disadvantage
)

// Effect is an active buff or condition that can modify a roll. A mandatory
// effect auto-applies on every matching roll; an optional one is reported to
// the caller and applied at most once before being consumed.
type Effect struct {
	Name         string
	Icon         string
	Categories   []Category
	Modifier     string // literal formula term to append, e.g. "1d4"
	Advantage    bool
	Disadvantage bool
	AutoFail     bool
}

// applies reports whether the effect matches the roll category.
func (e *Effect) applies(cat Category) bool {
	for _, c := range e.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// SessionState is the situational state threaded explicitly through every
// preparation call. The engine assumes a single caller mutates it; wrap it in
// a lock or single-writer queue if multiple surfaces can roll concurrently.
type SessionState struct {
	Advantage     AdvantageState
	Effects       []Effect // mandatory, auto-applying
	Optional      []Effect // single-use, caller must prompt
	Concentration string   // name of the maintained spell, "" when none
}

// NewSessionState returns a clean state with no active effects.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// ConsumeOptional drops the named optional effect after use and reports
// whether it was present.
func (s *SessionState) ConsumeOptional(name string) bool {
	for i := range s.Optional {
		if s.Optional[i].Name == name {
			s.Optional = append(s.Optional[:i], s.Optional[i+1:]...)
			return true
		}
	}
	return false
}
