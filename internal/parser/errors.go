package parser

import (
	"fmt"
	"strings"
)

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("I wasn't able to understand your command")
	}

	parts := strings.Fields(strings.ToLower(input))
	cmd := parts[0]

	switch cmd {
	case "roll":
		return fmt.Errorf("The command roll must be: roll [label: Name] <dice or \"formula\">")
	case "cast":
		return fmt.Errorf("The command cast must be: cast <spell> [slot: <level|pact>] [meta: <option> [and: <option>]*] [nocost]")
	case "use":
		return fmt.Errorf("The command use must be: use <effect>")
	case "check":
		return fmt.Errorf("The command check must be: check <skill or ability>")
	case "rest":
		return fmt.Errorf("The command rest must be: rest")
	case "sheet":
		return fmt.Errorf("The command sheet must be: sheet")
	case "drop":
		return fmt.Errorf("The command drop must be: drop")
	case "advantage", "disadvantage", "normal":
		return fmt.Errorf("The commands advantage, disadvantage and normal take no arguments")
	}

	return fmt.Errorf("I wasn't able to understand your command")
}
