package parser_test

import (
	"strings"
	"testing"

	"github.com/suderio/arcane-ledger/internal/parser"
)

func TestParseRoll(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "roll 2d6+3")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Roll == nil {
		t.Fatalf("Expected RollCmd, got nil")
	}

	if cmd.Roll.Dice != "2d6+3" {
		t.Errorf("Unexpected dice: %s", cmd.Roll.Dice)
	}
}

func TestParseRollWithLabel(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", `roll label: "Sneak Attack" 3d6`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Roll == nil || cmd.Roll.Label == nil {
		t.Fatalf("Expected labelled RollCmd, got %+v", cmd)
	}

	if parser.Unquote(cmd.Roll.Label.Name) != "Sneak Attack" {
		t.Errorf("Unexpected label: %s", cmd.Roll.Label.Name)
	}
}

func TestParseRollQuotedFormula(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", `roll "1d8+(strength.modifier)"`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if parser.Unquote(cmd.Roll.Dice) != "1d8+(strength.modifier)" {
		t.Errorf("Unexpected formula: %s", cmd.Roll.Dice)
	}
}

func TestParseCastBare(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "cast Fireball")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Cast == nil {
		t.Fatalf("Expected CastCmd, got nil")
	}

	if cmd.Cast.Name != "Fireball" {
		t.Errorf("Unexpected name: %s", cmd.Cast.Name)
	}

	if cmd.Cast.Slot != nil || cmd.Cast.NoCost {
		t.Errorf("Expected no slot and no nocost, got %+v", cmd.Cast)
	}
}

func TestParseCastWithSlot(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "cast Fireball slot: 5")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Cast.Slot == nil || *cmd.Cast.Slot != "5" {
		t.Fatalf("Expected slot 5, got %+v", cmd.Cast.Slot)
	}
}

func TestParseCastWithPactSlot(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", `cast "Eldritch Blast" slot: pact`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Cast.Slot == nil || *cmd.Cast.Slot != "pact" {
		t.Fatalf("Expected pact slot, got %+v", cmd.Cast.Slot)
	}
}

func TestParseCastWithMetamagic(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "cast Haste slot: 3 meta: quickened and: subtle")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if len(cmd.Cast.Metamagic) != 2 {
		t.Fatalf("Expected 2 metamagic options, got %d", len(cmd.Cast.Metamagic))
	}

	if cmd.Cast.Metamagic[0] != "quickened" || cmd.Cast.Metamagic[1] != "subtle" {
		t.Errorf("Unexpected metamagic: %v", cmd.Cast.Metamagic)
	}
}

func TestParseCastNoCost(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "cast Shield nocost")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if !cmd.Cast.NoCost {
		t.Errorf("Expected nocost flag set")
	}
}

func TestParseUse(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "use Inspiration")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Use == nil || cmd.Use.Name != "Inspiration" {
		t.Fatalf("Expected UseCmd Inspiration, got %+v", cmd)
	}
}

func TestParseCheck(t *testing.T) {
	p := parser.Build()

	cmd, err := p.ParseString("", "check stealth")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if cmd.Check == nil || cmd.Check.Skill != "stealth" {
		t.Fatalf("Expected CheckCmd stealth, got %+v", cmd)
	}
}

func TestParseAdvantageStates(t *testing.T) {
	p := parser.Build()

	for _, input := range []string{"advantage", "disadvantage", "normal"} {
		cmd, err := p.ParseString("", input)
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", input, err)
		}
		if cmd.Advantage == nil {
			t.Fatalf("Expected AdvantageCmd for %q", input)
		}
	}

	cmd, _ := p.ParseString("", "disadvantage")
	if !cmd.Advantage.IsDisadvantage() {
		t.Errorf("Expected IsDisadvantage true")
	}

	cmd, _ = p.ParseString("", "normal")
	if !cmd.Advantage.IsNormal() {
		t.Errorf("Expected IsNormal true")
	}
}

func TestParseBareCommands(t *testing.T) {
	p := parser.Build()

	if cmd, err := p.ParseString("", "rest"); err != nil || cmd.Rest == nil {
		t.Fatalf("Expected RestCmd, got %+v (%v)", cmd, err)
	}
	if cmd, err := p.ParseString("", "sheet"); err != nil || cmd.Sheet == nil {
		t.Fatalf("Expected SheetCmd, got %+v (%v)", cmd, err)
	}
	if cmd, err := p.ParseString("", "drop"); err != nil || cmd.Drop == nil {
		t.Fatalf("Expected DropCmd, got %+v (%v)", cmd, err)
	}
}

func TestMapErrorUsage(t *testing.T) {
	err := parser.MapError("cast", nil)
	if err == nil {
		t.Fatalf("Expected usage error")
	}
	if got := err.Error(); !strings.Contains(got, "cast") || !strings.Contains(got, "slot") {
		t.Errorf("Unexpected usage message: %s", got)
	}
}
