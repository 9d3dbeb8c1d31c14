package character

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// VariableBag is the flat string-keyed variable map. Sheet files may write a
// value as a bare scalar or as the legacy wrapped form `{value: 3}`; both
// decode into the same Variable kinds so nothing downstream sniffs shapes.
type VariableBag map[string]Variable

// UnmarshalYAML decodes the bag, normalizing every entry into a Variable.
func (b *VariableBag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("variables must be a mapping, got %s", node.Tag)
	}
	out := make(VariableBag, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		// Legacy wrapped form: {value: X}
		if val.Kind == yaml.MappingNode {
			inner, ok := mappingValue(val, "value")
			if !ok {
				return fmt.Errorf("variable %q: wrapped form requires a 'value' key", key)
			}
			val = inner
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("variable %q: unsupported value shape", key)
		}

		v, err := scalarVariable(val)
		if err != nil {
			return fmt.Errorf("variable %q: %w", key, err)
		}
		out[key] = v
	}
	*b = out
	return nil
}

func mappingValue(node *yaml.Node, key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], true
		}
	}
	return nil, false
}

func scalarVariable(node *yaml.Node) (Variable, error) {
	switch node.Tag {
	case "!!bool":
		v, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, err
		}
		return Bool(v), nil
	case "!!int", "!!float":
		v, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, err
		}
		return Number(v), nil
	default:
		return Text(node.Value), nil
	}
}

// Load reads and parses a character sheet YAML file.
// All nil maps are initialized afterwards to prevent nil-map panics.
func Load(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet %s: %w", path, err)
	}
	defer f.Close()

	var s Sheet
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode sheet %s: %w", path, err)
	}

	if s.Abilities == nil {
		s.Abilities = make(map[string]int)
	}
	if s.Variables == nil {
		s.Variables = make(VariableBag)
	}
	if s.Resources == nil {
		s.Resources = make([]Resource, 0)
	}
	if s.SpellSlots == nil {
		s.SpellSlots = make(map[int]Slot)
	}

	return &s, nil
}
