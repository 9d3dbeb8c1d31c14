package cast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/roll"
	"github.com/suderio/arcane-ledger/internal/rulebook"
)

// PointsKey is the resource key metamagic costs are charged against.
const PointsKey = "sorceryPoints"

// Metamagic is one entry of the fixed modifier catalog. LevelScaled options
// cost the chosen cast level, minimum 1.
type Metamagic struct {
	Name        string
	Cost        int
	LevelScaled bool
}

// metamagicCatalog is the closed set of modifier options.
var metamagicCatalog = map[string]Metamagic{
	"careful":    {Name: "Careful", Cost: 1},
	"distant":    {Name: "Distant", Cost: 1},
	"empowered":  {Name: "Empowered", Cost: 1},
	"extended":   {Name: "Extended", Cost: 1},
	"heightened": {Name: "Heightened", Cost: 3},
	"quickened":  {Name: "Quickened", Cost: 2},
	"subtle":     {Name: "Subtle", Cost: 1},
	"twinned":    {Name: "Twinned", LevelScaled: true},
}

// Resolution is the structured result of one cast: every roll sub-request,
// the resource deltas for the caller to apply, and the bookkeeping flags.
// Nothing in it has been performed.
type Resolution struct {
	Spell              string
	Phase              Phase
	NeedsSlotSelection bool
	MinimumLevel       int
	SlotOptions        []SlotOption
	ChosenLevel        int
	Rolls              []roll.Request
	Costs              []character.ResourceCost
	SideEffects        []string
	Concentration      bool
	ManualAdjudication bool
}

// Engine resolves casts against the edge-case rule catalog.
type Engine struct {
	catalog  *rulebook.Catalog
	registry *rulebook.Registry
}

// NewEngine builds an engine. Both collaborators may be nil, in which case
// every spell gets default handling.
func NewEngine(catalog *rulebook.Catalog, registry *rulebook.Registry) *Engine {
	return &Engine{catalog: catalog, registry: registry}
}

// Resolve runs the cast decision pipeline. On an insufficiency it returns a
// typed *character.InsufficientResourceError and no resolution; the sheet is
// never touched either way; costs are returned, not applied.
func (e *Engine) Resolve(spell *Spell, sheet *character.Sheet, sess *roll.SessionState, opts Options) (*Resolution, error) {
	res := &Resolution{Spell: spell.Name, Phase: PhaseIdle, ChosenLevel: spell.Level}

	rule, ruleFound := e.lookupRule(spell.Name, sheet)

	// Specially-marked spells are adjudicated by hand; no roll is computed.
	if spell.Manual || (ruleFound && rule.Type == rulebook.TypeManual) {
		res.ManualAdjudication = true
		if ruleFound && rule.Note != "" {
			res.SideEffects = append(res.SideEffects, rule.Note)
		}
		res.Phase = PhaseDone
		return res, nil
	}

	// 1. Resource decision.
	switch {
	case spell.FromItem, spell.Levelless, spell.IsCantrip(), opts.NoCost:
		// No resource is touched. A no-cost recast of a maintained effect
		// still reports the bookkeeping as a side effect.
		if opts.NoCost {
			res.SideEffects = append(res.SideEffects, fmt.Sprintf("recast %s without cost", spell.Name))
		}
		res.Phase = PhaseResourceCommitted
	case opts.SlotKey == "":
		res.NeedsSlotSelection = true
		res.MinimumLevel = spell.Level
		res.SlotOptions = e.SlotOptions(spell, sheet)
		res.Phase = PhaseResourceSelectionPending
	default:
		level, cost, err := e.commitSlot(spell, sheet, opts.SlotKey)
		if err != nil {
			return nil, err
		}
		res.ChosenLevel = level
		res.Costs = append(res.Costs, cost)
		res.Phase = PhaseResourceCommitted
	}

	// 2. Modifier costs, all-or-nothing against the points pool.
	if len(opts.Metamagic) > 0 {
		cost, names, err := e.metamagicCost(opts.Metamagic, res.ChosenLevel, sheet)
		if err != nil {
			return nil, err
		}
		res.Costs = append(res.Costs, character.ResourceCost{Key: PointsKey, Amount: cost})
		res.SideEffects = append(res.SideEffects, fmt.Sprintf("metamagic %s (%d points)", strings.Join(names, ", "), cost))
	}

	// 3. Rolls are always collected, independent of the resource branch.
	e.buildRolls(res, spell, sheet, sess, rule, ruleFound)
	if res.Phase == PhaseResourceCommitted {
		res.Phase = PhaseRollsEmitted
	}

	// Edge-case rules can attach an extra resource cost.
	if ruleFound && rule.Type == rulebook.TypeResourceCost {
		amount := rule.Amount
		if amount == 0 {
			amount = 1
		}
		res.Costs = append(res.Costs, character.ResourceCost{Key: rule.ResourceKey, Amount: amount})
	}

	// 4. Maintained-duration tracking.
	if spell.Concentration {
		res.Concentration = true
		res.SideEffects = append(res.SideEffects, fmt.Sprintf("concentrating on %s", spell.Name))
	}

	switch {
	case res.NeedsSlotSelection:
		// Terminal phase arrives after the caller picks a slot.
	case res.Concentration:
		res.Phase = PhaseMaintainedEffectTracked
	default:
		res.Phase = PhaseDone
	}

	return res, nil
}

// lookupRule finds the applicable edge-case rule for a feature name. Unknown
// names fall back to default handling, never an error.
func (e *Engine) lookupRule(name string, sheet *character.Sheet) (rulebook.Rule, bool) {
	if e.catalog == nil {
		return rulebook.Rule{}, false
	}
	rule, ok := e.catalog.Lookup(name)
	if !ok {
		return rulebook.Rule{}, false
	}
	if e.registry != nil && !e.registry.Applies(rule, sheet) {
		return rulebook.Rule{}, false
	}
	return rule, true
}

// SlotOptions lists every pool able to pay for the spell. Ordinary slots at
// the pact effective level have the pact allotment subtracted so the same
// narrative slots are never offered twice.
func (e *Engine) SlotOptions(spell *Spell, sheet *character.Sheet) []SlotOption {
	var opts []SlotOption
	pactLevel := PactEffectiveLevel(sheet)

	for level := spell.Level; level <= 9; level++ {
		if level < 1 {
			continue
		}
		slot, ok := sheet.SpellSlots[level]
		if !ok || slot.Max == 0 {
			continue
		}
		available := slot.Current
		if sheet.Pact != nil && level == pactLevel {
			available -= sheet.Pact.Max
			if available < 0 {
				available = 0
			}
		}
		opts = append(opts, SlotOption{Key: character.SlotKey(level), Level: level, Available: available})
	}

	if sheet.Pact != nil && sheet.Pact.Max > 0 && pactLevel >= spell.Level {
		opts = append(opts, SlotOption{Key: character.PactKey, Level: pactLevel, Available: sheet.Pact.Current})
	}

	return opts
}

// commitSlot validates the chosen pool and produces its deduction.
// Slot consumption is always exactly 1.
func (e *Engine) commitSlot(spell *Spell, sheet *character.Sheet, key string) (int, character.ResourceCost, error) {
	if key == character.PactKey {
		level := PactEffectiveLevel(sheet)
		if sheet.Pact == nil || level < spell.Level {
			return 0, character.ResourceCost{}, &character.InsufficientResourceError{
				Resource: "pact slots", Required: 1, Available: 0,
			}
		}
		if sheet.Pact.Current < 1 {
			return 0, character.ResourceCost{}, &character.InsufficientResourceError{
				Resource: "pact slots", Required: 1, Available: sheet.Pact.Current,
			}
		}
		return level, character.ResourceCost{Key: key, Amount: 1}, nil
	}

	level, ok := character.ParseSlotKey(key)
	if !ok || level < spell.Level {
		return 0, character.ResourceCost{}, fmt.Errorf("slot %q cannot cast a level %d spell", key, spell.Level)
	}
	slot := sheet.SpellSlots[level]
	available := slot.Current
	if sheet.Pact != nil && level == PactEffectiveLevel(sheet) {
		available -= sheet.Pact.Max
	}
	if available < 1 {
		return 0, character.ResourceCost{}, &character.InsufficientResourceError{
			Resource:  fmt.Sprintf("level %d slots", level),
			Required:  1,
			Available: max(available, 0),
		}
	}
	return level, character.ResourceCost{Key: key, Amount: 1}, nil
}

// metamagicCost sums the selected options' costs. The level-scaled option
// charges the chosen cast level, minimum 1. Insufficiency is a typed failure
// naming the shortfall; nothing is deducted.
func (e *Engine) metamagicCost(selected []string, chosenLevel int, sheet *character.Sheet) (int, []string, error) {
	total := 0
	names := make([]string, 0, len(selected))
	for _, name := range selected {
		mm, ok := metamagicCatalog[strings.ToLower(name)]
		if !ok {
			return 0, nil, fmt.Errorf("unknown metamagic option %q", name)
		}
		cost := mm.Cost
		if mm.LevelScaled {
			cost = max(1, chosenLevel)
		}
		total += cost
		names = append(names, mm.Name)
	}

	available := 0
	if points, ok := sheet.Resource(PointsKey); ok {
		available = points.Current
	}
	if total > available {
		return 0, nil, &character.InsufficientResourceError{
			Resource:  "sorcery points",
			Required:  total,
			Available: available,
		}
	}
	return total, names, nil
}

var slotLevelRe = regexp.MustCompile(`(?i)slotlevel`)

// buildRolls collects the attack and per-component roll requests, applying
// edge-case restructuring. Upcast scaling happens here: the reserved
// slotLevel token is substituted with the chosen level before resolution.
func (e *Engine) buildRolls(res *Resolution, spell *Spell, sheet *character.Sheet, sess *roll.SessionState, rule rulebook.Rule, ruleFound bool) {
	level := res.ChosenLevel
	if level < spell.Level {
		level = spell.Level
	}

	if spell.Attack {
		req := roll.Prepare(spell.Name+" Attack", "1d20+(spellList.attackBonus)", sheet, sess)
		if ruleFound && rule.Type == rulebook.TypeAdvantage {
			req.Annotations = append(req.Annotations, fmt.Sprintf("[%s: advantage]", rule.Name))
		}
		res.Rolls = append(res.Rolls, req)
	}

	for _, comp := range spell.Components {
		label := spell.Name + " " + componentLabel(comp)
		f := slotLevelRe.ReplaceAllString(comp.Formula, strconv.Itoa(level))
		if ruleFound && rule.Type == rulebook.TypeModifier && comp.Kind == KindDamage {
			f = f + "+" + rule.Modifier
		}
		req := roll.Prepare(label, f, sheet, sess)
		res.Rolls = append(res.Rolls, req)
	}

	if ruleFound && rule.Type == rulebook.TypeAnnotation && rule.Note != "" {
		res.SideEffects = append(res.SideEffects, rule.Note)
	}
}

func componentLabel(c Component) string {
	switch c.Kind {
	case KindHealing:
		return "Healing"
	case KindTempHP:
		return "Temporary HP"
	default:
		if c.DamageType != "" {
			return fmt.Sprintf("Damage (%s)", c.DamageType)
		}
		return "Damage"
	}
}

// PactEffectiveLevel derives the pact pool's effective level. Precedence:
// the tracked pool level, then the pactLevel sheet variable, then the
// standard pact progression from the character level.
func PactEffectiveLevel(sheet *character.Sheet) int {
	if sheet.Pact == nil {
		return 0
	}
	if sheet.Pact.Level > 0 {
		return sheet.Pact.Level
	}
	if v, ok := sheet.NumberVariable("pactLevel"); ok && v > 0 {
		return int(v)
	}
	// Pact progression: level/2 rounded up, capped at 5.
	derived := (sheet.Level + 1) / 2
	if derived > 5 {
		derived = 5
	}
	return derived
}
