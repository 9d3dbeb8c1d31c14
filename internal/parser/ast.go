package parser

import (
	"strings"
)

// Command represents a top-level action inputted into the DSL
type Command struct {
	Roll      *RollCmd      `parser:"( @@"`
	Cast      *CastCmd      `parser:"| @@"`
	Use       *UseCmd       `parser:"| @@"`
	Check     *CheckCmd     `parser:"| @@"`
	Rest      *RestCmd      `parser:"| @@"`
	Sheet     *SheetCmd     `parser:"| @@"`
	Drop      *DropCmd      `parser:"| @@"`
	Advantage *AdvantageCmd `parser:"| @@"`
	Help      *HelpCmd      `parser:"| @@ )"`
}

// RollCmd rolls a dice expression or a quoted sheet formula
type RollCmd struct {
	Keyword string     `parser:"@(\"roll\"|\"Roll\"|\"ROLL\")"`
	Label   *LabelExpr `parser:"@@?"`
	Dice    string     `parser:"@(DiceMacro|String)"`
}

// LabelExpr maps parsing the optional "label: Stealth" block
type LabelExpr struct {
	Keyword string `parser:"\"label\" \":\""`
	Name    string `parser:"@(Ident|String)"`
}

// CastCmd resolves a spell or action by name, with optional slot and metamagic choices
type CastCmd struct {
	Keyword   string   `parser:"@(\"cast\"|\"Cast\"|\"CAST\")"`
	Name      string   `parser:"@(Ident|String)"`
	Slot      *string  `parser:"( \"slot\" \":\" @(Int|\"pact\") )?"`
	Metamagic []string `parser:"( \"meta\" \":\" @Ident ( \"and\" \":\" @Ident )* )?"`
	NoCost    bool     `parser:"@\"nocost\"?"`
}

// UseCmd spends a single-use optional effect on the most recent roll
type UseCmd struct {
	Keyword string `parser:"@(\"use\"|\"Use\"|\"USE\")"`
	Name    string `parser:"@(Ident|String)"`
}

// CheckCmd rolls a d20 check against a named sheet variable
type CheckCmd struct {
	Keyword string `parser:"@(\"check\"|\"Check\"|\"CHECK\")"`
	Skill   string `parser:"@Ident"`
}

// RestCmd restores every tracked resource to its maximum
type RestCmd struct {
	Keyword string `parser:"@(\"rest\"|\"Rest\"|\"REST\")"`
}

// SheetCmd prints a summary of the loaded character
type SheetCmd struct {
	Keyword string `parser:"@(\"sheet\"|\"Sheet\"|\"SHEET\")"`
}

// DropCmd ends the tracked concentration effect, if any
type DropCmd struct {
	Keyword string `parser:"@(\"drop\"|\"Drop\"|\"DROP\")"`
}

// AdvantageCmd arms the one-shot advantage state for the next d20 roll
type AdvantageCmd struct {
	Keyword string `parser:"@(\"advantage\"|\"Advantage\"|\"ADVANTAGE\"|\"disadvantage\"|\"Disadvantage\"|\"DISADVANTAGE\"|\"normal\"|\"Normal\"|\"NORMAL\")"`
}

// IsDisadvantage reports the disadvantage spelling of the keyword.
func (a *AdvantageCmd) IsDisadvantage() bool {
	return strings.EqualFold(a.Keyword, "disadvantage")
}

// IsNormal reports the explicit reset spelling of the keyword.
func (a *AdvantageCmd) IsNormal() bool {
	return strings.EqualFold(a.Keyword, "normal")
}

// HelpCmd provides context-aware guidance
type HelpCmd struct {
	Keyword string `parser:"@(\"help\"|\"Help\"|\"HELP\")"`
	Command string `parser:"@Ident?"`
}

// Unquote strips the surrounding quotes off a String token value.
func Unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
