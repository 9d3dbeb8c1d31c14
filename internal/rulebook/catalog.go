// Package rulebook holds the edge-case rule catalog: named overrides that
// change how a specific game feature resolves. The catalog is configuration
// owned by content maintainers; this package owns only the lookup and
// dispatch mechanism (normalize, exact match, type branch).
package rulebook

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// RuleType discriminates the rule variants. The cast engine dispatches on it
// with a single switch instead of four parallel lookup tables.
type RuleType string

const (
	// TypeResourceCost: using the feature consumes a sheet resource.
	TypeResourceCost RuleType = "resource_cost"
	// TypeAdvantage: the feature grants advantage on its rolls.
	TypeAdvantage RuleType = "advantage"
	// TypeModifier: the feature appends a literal term to its rolls.
	TypeModifier RuleType = "modifier"
	// TypeManual: the feature is too complex to model and must be
	// adjudicated by hand.
	TypeManual RuleType = "manual"
	// TypeAnnotation: display-only note attached to the rolls.
	TypeAnnotation RuleType = "annotation"
)

// Rule describes one non-default behavior. Only the fields relevant to its
// Type are populated; everything else stays zero.
type Rule struct {
	Name        string   `yaml:"name"`
	Type        RuleType `yaml:"type"`
	ResourceKey string   `yaml:"resource_key"` // resource_cost
	Amount      int      `yaml:"amount"`       // resource_cost
	Modifier    string   `yaml:"modifier"`     // modifier
	Note        string   `yaml:"note"`         // annotation / manual
	When        string   `yaml:"when"`         // optional CEL applicability condition
}

// Catalog is the merged rule table, indexed by normalized name.
// It is loaded once and never mutated afterwards.
type Catalog struct {
	rules map[string]Rule
}

// NewCatalog indexes the given rules.
func NewCatalog(rules []Rule) *Catalog {
	c := &Catalog{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		c.rules[Normalize(r.Name)] = r
	}
	return c
}

// ruleFile is the YAML shape of one catalog file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads one or more catalog YAML files into a single merged catalog.
// Later files win on name collision.
func Load(paths ...string) (*Catalog, error) {
	var all []Rule
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open rule catalog %s: %w", path, err)
		}
		var rf ruleFile
		err = yaml.NewDecoder(f).Decode(&rf)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode rule catalog %s: %w", path, err)
		}
		all = append(all, rf.Rules...)
	}
	return NewCatalog(all), nil
}

// Normalize lowercases a feature name and strips punctuation so lookups are
// stable across display variants.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Lookup finds the rule for a feature name: normalize, exact match, then the
// single documented fallback, where a colon-qualified variant ("Feature: Subtype")
// falls back to its base entry.
func (c *Catalog) Lookup(name string) (Rule, bool) {
	if r, ok := c.rules[Normalize(name)]; ok {
		return r, true
	}
	if base, _, found := strings.Cut(name, ":"); found {
		if r, ok := c.rules[Normalize(base)]; ok {
			return r, true
		}
	}
	return Rule{}, false
}

// Len reports how many rules the catalog holds.
func (c *Catalog) Len() int { return len(c.rules) }
