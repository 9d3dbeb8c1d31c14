package rulebook

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/suderio/arcane-ledger/internal/character"
)

// Registry manages the CEL environment used to evaluate rule applicability
// conditions. The math evaluator stays hand-written; CEL only decides whether
// a catalog entry applies to the current character.
type Registry struct {
	env *cel.Env
}

// NewRegistry initializes the CEL environment with the sheet context variable
// and the mod() helper.
func NewRegistry() (*Registry, error) {
	env, err := cel.NewEnv(
		cel.Variable("actor", cel.MapType(cel.StringType, cel.AnyType)),

		cel.Function("mod",
			cel.Overload("mod_int",
				[]*cel.Type{cel.IntType},
				cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					score := val.Value().(int64)
					return types.Int(character.ScoreModifier(int(score)))
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Registry{env: env}, nil
}

// Applies evaluates a rule's optional When condition against the sheet.
// Rules without a condition always apply; a condition that fails to compile
// or does not evaluate to true keeps the rule inactive.
func (r *Registry) Applies(rule Rule, sheet *character.Sheet) bool {
	if rule.When == "" {
		return true
	}
	ast, iss := r.env.Compile(rule.When)
	if iss.Err() != nil {
		return false
	}
	prog, err := r.env.Program(ast)
	if err != nil {
		return false
	}
	out, _, err := prog.Eval(map[string]any{"actor": SheetContext(sheet)})
	if err != nil {
		return false
	}
	passed, ok := out.Value().(bool)
	return ok && passed
}

// SheetContext converts a Sheet into the map CEL conditions evaluate against.
func SheetContext(s *character.Sheet) map[string]any {
	abilities := make(map[string]any, len(s.Abilities))
	for k, v := range s.Abilities {
		abilities[k] = int64(v)
	}
	resources := make(map[string]any, len(s.Resources))
	for _, r := range s.Resources {
		resources[r.Key] = int64(r.Current)
	}
	vars := make(map[string]any, len(s.Variables))
	for k, v := range s.Variables {
		switch val := v.(type) {
		case character.Number:
			vars[k] = float64(val)
		case character.Bool:
			vars[k] = bool(val)
		case character.Text:
			vars[k] = string(val)
		}
	}
	return map[string]any{
		"name":        s.Name,
		"class":       s.Class,
		"level":       int64(s.Level),
		"proficiency": int64(s.ProficiencyBonus),
		"abilities":   abilities,
		"resources":   resources,
		"variables":   vars,
	}
}
