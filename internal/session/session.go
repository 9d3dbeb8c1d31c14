package session

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/suderio/arcane-ledger/internal/cast"
	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/journal"
	"github.com/suderio/arcane-ledger/internal/parser"
	"github.com/suderio/arcane-ledger/internal/relay"
	"github.com/suderio/arcane-ledger/internal/roll"
	"github.com/suderio/arcane-ledger/internal/rulebook"
)

// Store defines the dependency required by Session to persist events
type Store interface {
	Append(evt journal.Event) error
	Load() ([]journal.Event, error)
	Close() error
}

// Config carries everything a Session needs to bootstrap.
type Config struct {
	SheetPath     string
	SpellsDir     string
	RulebookPaths []string
	Store         Store
	Relay         relay.Relay
}

// Session manages the cohesive loop of taking commands, executing them,
// persisting events, and keeping the projected sheet current.
type Session struct {
	cfg    Config
	sheet  *character.Sheet
	state  *roll.SessionState
	engine *cast.Engine

	// lastRoll remembers the most recent prepared request so a follow-up
	// "use <effect>" can be matched against its category.
	lastRoll *roll.Request
}

// NewSession loads the sheet and rulebook, replays the journal, and returns
// a ready session.
func NewSession(cfg Config) (*Session, error) {
	sheet, err := character.Load(cfg.SheetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load character sheet: %w", err)
	}

	var catalog *rulebook.Catalog
	if len(cfg.RulebookPaths) > 0 {
		catalog, err = rulebook.Load(cfg.RulebookPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load rulebook: %w", err)
		}
	}

	registry, err := rulebook.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rule registry: %w", err)
	}

	s := &Session{
		cfg:    cfg,
		sheet:  sheet,
		state:  roll.NewSessionState(),
		engine: cast.NewEngine(catalog, registry),
	}
	if err := s.RebuildState(); err != nil {
		return nil, err
	}
	return s, nil
}

// RebuildState reads the entire event log from the store and replays it over
// a freshly loaded sheet.
func (s *Session) RebuildState() error {
	if s.cfg.Store == nil {
		return nil
	}
	events, err := s.cfg.Store.Load()
	if err != nil {
		return fmt.Errorf("failed to load event log: %w", err)
	}
	return journal.Replay(events, s.sheet, s.state)
}

// Sheet returns the projected character sheet.
func (s *Session) Sheet() *character.Sheet {
	return s.sheet
}

// State returns the transient roll-session state.
func (s *Session) State() *roll.SessionState {
	return s.state
}

// Execute takes a raw command string from a UI client, coordinates execution,
// appends resulting events, and returns the descriptive output.
func (s *Session) Execute(input string) (string, error) {
	langParser := parser.Build()

	astCmd, err := langParser.ParseString("", input)
	if err != nil {
		return "", parser.MapError(input, err)
	}

	switch {
	case astCmd.Roll != nil:
		label := "Roll"
		if astCmd.Roll.Label != nil {
			label = parser.Unquote(astCmd.Roll.Label.Name)
		}
		return s.executeRoll(label, parser.Unquote(astCmd.Roll.Dice))

	case astCmd.Check != nil:
		formula := fmt.Sprintf("1d20+(%s)", astCmd.Check.Skill)
		return s.executeRoll(astCmd.Check.Skill+" Check", formula)

	case astCmd.Cast != nil:
		return s.executeCast(astCmd.Cast)

	case astCmd.Use != nil:
		return s.executeUse(parser.Unquote(astCmd.Use.Name))

	case astCmd.Advantage != nil:
		return s.executeAdvantage(astCmd.Advantage)

	case astCmd.Rest != nil:
		if err := s.applyAndAppend(&journal.RestEvent{}); err != nil {
			return "", err
		}
		return "All resources restored.", nil

	case astCmd.Drop != nil:
		return s.executeDrop()

	case astCmd.Sheet != nil:
		return s.sheetSummary(), nil

	case astCmd.Help != nil:
		return helpText(astCmd.Help.Command), nil
	}

	return "", parser.MapError(input, nil)
}

// applyAndAppend mutates the projected state and persists the event, in that
// order: an event that fails to apply is never written.
func (s *Session) applyAndAppend(evt journal.Event) error {
	if err := evt.Apply(s.sheet, s.state); err != nil {
		return err
	}
	if s.cfg.Store == nil {
		return nil
	}
	return s.cfg.Store.Append(evt)
}

func (s *Session) executeRoll(label, rawFormula string) (string, error) {
	req := roll.Prepare(label, rawFormula, s.sheet, s.state)
	s.lastRoll = &req

	out, err := s.finishRoll(req)
	if err != nil {
		return "", err
	}

	if avail := s.availableOptional(req); len(avail) > 0 {
		out += fmt.Sprintf("\nAvailable: %s.", strings.Join(avail, ", "))
	}
	return out, nil
}

// finishRoll rolls the prepared request and relays the outcome. Formulas
// with unresolved tokens are relayed verbatim for manual handling.
func (s *Session) finishRoll(req roll.Request) (string, error) {
	msg := relay.Message{
		Label:       req.Label,
		Formula:     req.Formula,
		Annotations: req.Annotations,
	}
	if req.AutoFail {
		msg.Note = "automatic failure"
	}

	total, breakdown, err := roll.Total(req.Formula)
	if err != nil {
		msg.Note = "could not roll, resolve manually"
	} else {
		msg.Total = total
		msg.Breakdown = breakdown
	}

	if s.cfg.Relay != nil {
		if err := s.cfg.Relay.Send(msg); err != nil {
			return "", fmt.Errorf("relay failure: %w", err)
		}
	}
	return relay.Format(msg), nil
}

// availableOptional hints at single-use effects matching the request.
func (s *Session) availableOptional(req roll.Request) []string {
	if !roll.HasOptionalEffect(req.Label, s.state) {
		return nil
	}
	names := make([]string, 0, len(s.state.Optional))
	for i := range s.state.Optional {
		names = append(names, s.state.Optional[i].Name)
	}
	return names
}

func (s *Session) executeUse(name string) (string, error) {
	if s.lastRoll == nil {
		return "", fmt.Errorf("nothing to apply %s to; roll first", name)
	}

	base := *s.lastRoll
	req := base
	if !roll.ApplyOptionalEffect(&req, s.state, name) {
		return fmt.Sprintf("%s does not apply to %s.", name, base.Label), nil
	}

	// ApplyOptionalEffect already dropped the effect from the session; the
	// journal entry makes the consumption survive a replay.
	if err := s.applyAndAppend(&journal.EffectConsumedEvent{Name: name}); err != nil {
		return "", err
	}
	s.lastRoll = nil

	// Only the delta is rolled; the original result stands.
	extra := strings.TrimPrefix(strings.TrimPrefix(req.Formula, base.Formula), "+")
	if extra == "" {
		return fmt.Sprintf("%s applied to %s.", name, base.Label), nil
	}
	return s.finishRoll(roll.Request{Label: name, Formula: extra, Kind: base.Kind})
}

func (s *Session) executeAdvantage(cmd *parser.AdvantageCmd) (string, error) {
	switch {
	case cmd.IsNormal():
		s.state.Advantage = roll.Normal
		return "Advantage state cleared.", nil
	case cmd.IsDisadvantage():
		s.state.Advantage = roll.Disadvantage
		return "Next d20 roll has disadvantage.", nil
	default:
		s.state.Advantage = roll.Advantage
		return "Next d20 roll has advantage.", nil
	}
}

func (s *Session) executeDrop() (string, error) {
	if s.state.Concentration == "" {
		return "Not concentrating on anything.", nil
	}
	name := s.state.Concentration
	if err := s.applyAndAppend(&journal.ConcentrationEvent{Spell: name, Active: false}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Concentration on %s ended.", name), nil
}

func (s *Session) executeCast(cmd *parser.CastCmd) (string, error) {
	name := parser.Unquote(cmd.Name)
	spell, err := s.loadSpell(name)
	if err != nil {
		return "", err
	}

	opts := cast.Options{
		Metamagic: cmd.Metamagic,
		NoCost:    cmd.NoCost,
	}
	if cmd.Slot != nil {
		if *cmd.Slot == "pact" {
			opts.SlotKey = character.PactKey
		} else {
			opts.SlotKey = "slot" + *cmd.Slot
		}
	}

	res, err := s.engine.Resolve(spell, s.sheet, s.state, opts)
	if err != nil {
		return "", err
	}

	if res.ManualAdjudication {
		return fmt.Sprintf("%s needs manual adjudication; no resources were spent.", res.Spell), nil
	}

	if res.NeedsSlotSelection {
		return slotPrompt(res), nil
	}

	var out []string
	if len(res.Costs) > 0 {
		evt := &journal.CostsAppliedEvent{Source: res.Spell, Costs: res.Costs}
		if err := s.applyAndAppend(evt); err != nil {
			return "", err
		}
		out = append(out, evt.Message())
	}
	if res.Concentration {
		evt := &journal.ConcentrationEvent{Spell: res.Spell, Active: true}
		if err := s.applyAndAppend(evt); err != nil {
			return "", err
		}
		out = append(out, fmt.Sprintf("Concentrating on %s.", res.Spell))
	}

	for _, req := range res.Rolls {
		line, err := s.finishRoll(req)
		if err != nil {
			return "", err
		}
		out = append(out, line)
		s.lastRoll = &req
	}

	out = append(out, res.SideEffects...)
	return strings.Join(out, "\n"), nil
}

// loadSpell maps a display name to its YAML file in the spells directory.
func (s *Session) loadSpell(name string) (*cast.Spell, error) {
	file := strings.ReplaceAll(rulebook.Normalize(name), " ", "-") + ".yaml"
	spell, err := cast.LoadSpell(filepath.Join(s.cfg.SpellsDir, file))
	if err != nil {
		return nil, fmt.Errorf("unknown spell or action %q: %w", name, err)
	}
	return spell, nil
}

func slotPrompt(res *cast.Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s needs a slot of level %d or higher. Available:\n", res.Spell, res.MinimumLevel)
	for _, opt := range res.SlotOptions {
		if opt.Key == character.PactKey {
			fmt.Fprintf(&b, "  slot: pact (level %d, %d left)\n", opt.Level, opt.Available)
		} else {
			fmt.Fprintf(&b, "  slot: %d (%d left)\n", opt.Level, opt.Available)
		}
	}
	b.WriteString("Re-run with slot: <level|pact>.")
	return b.String()
}

func (s *Session) sheetSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, level %d %s\n", s.sheet.Name, s.sheet.Level, s.sheet.Class)

	for _, r := range s.sheet.Resources {
		fmt.Fprintf(&b, "  %s: %d/%d\n", r.Key, r.Current, r.Max)
	}

	levels := make([]int, 0, len(s.sheet.SpellSlots))
	for lvl := range s.sheet.SpellSlots {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	for _, lvl := range levels {
		slot := s.sheet.SpellSlots[lvl]
		fmt.Fprintf(&b, "  slot%d: %d/%d\n", lvl, slot.Current, slot.Max)
	}
	if s.sheet.Pact != nil {
		fmt.Fprintf(&b, "  pact: %d/%d at level %d\n", s.sheet.Pact.Current, s.sheet.Pact.Max, s.sheet.Pact.Level)
	}
	if s.state.Concentration != "" {
		fmt.Fprintf(&b, "  concentrating on %s\n", s.state.Concentration)
	}
	return strings.TrimRight(b.String(), "\n")
}

func helpText(command string) string {
	switch strings.ToLower(command) {
	case "roll":
		return "roll [label: Name] <dice or \"formula\"> - roll dice or a sheet formula"
	case "cast":
		return "cast <spell> [slot: <level|pact>] [meta: <option> [and: <option>]*] [nocost]"
	case "use":
		return "use <effect> - spend a single-use effect on the last roll"
	case "check":
		return "check <skill or ability> - roll a d20 check against a sheet variable"
	}
	return strings.Join([]string{
		"Commands:",
		"  roll [label: Name] <dice or \"formula\">",
		"  cast <spell> [slot: <level|pact>] [meta: <option>] [nocost]",
		"  check <skill>",
		"  use <effect>",
		"  advantage | disadvantage | normal",
		"  drop | rest | sheet | help [command]",
	}, "\n")
}
