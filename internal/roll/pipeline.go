package roll

import (
	"fmt"
	"regexp"

	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/formula"
)

// Request is a fully prepared roll handed to the presentation layer.
// Annotations are ordered: mandatory effects first, then consumed optional
// ones, discovery order within each group.
type Request struct {
	Label       string
	Formula     string
	Kind        Category
	Annotations []string
	AutoFail    bool
}

// baseD20Re matches a bare d20 term that has not already been rewritten with
// a keep modifier.
var baseD20Re = regexp.MustCompile(`(^|[^0-9dk])(1?d20)([^0-9k]|$)`)

// Prepare resolves the formula against the sheet, auto-applies every matching
// mandatory effect, consumes the advantage tri-state, and returns the final
// roll request. Optional effects are never applied here; the caller decides
// via HasOptionalEffect and ApplyOptionalEffect.
func Prepare(label, rawFormula string, sheet *character.Sheet, sess *SessionState) Request {
	req := Request{
		Label:   label,
		Formula: formula.Resolve(rawFormula, sheet),
		Kind:    Categorize(label),
	}

	for i := range sess.Effects {
		applyEffect(&req, &sess.Effects[i])
	}

	if sess.Advantage != Normal {
		if rewritten, ok := rewriteD20(req.Formula, sess.Advantage); ok {
			req.Formula = rewritten
			if sess.Advantage == Advantage {
				req.Annotations = append(req.Annotations, "[↑ Advantage: keep highest]")
			} else {
				req.Annotations = append(req.Annotations, "[↓ Disadvantage: keep lowest]")
			}
		}
		// One-shot regardless of whether a d20 term was found.
		sess.Advantage = Normal
	}

	return req
}

// applyEffect folds one mandatory effect into the request if it matches.
func applyEffect(req *Request, e *Effect) {
	if !e.applies(req.Kind) {
		return
	}
	switch {
	case e.AutoFail:
		req.AutoFail = true
		req.Annotations = append(req.Annotations, annotation(e, "automatic failure"))
	case e.Advantage:
		req.Annotations = append(req.Annotations, annotation(e, "advantage"))
	case e.Disadvantage:
		req.Annotations = append(req.Annotations, annotation(e, "disadvantage"))
	case e.Modifier != "":
		req.Formula = req.Formula + "+" + e.Modifier
		req.Annotations = append(req.Annotations, annotation(e, "+"+e.Modifier))
	}
}

func annotation(e *Effect, effect string) string {
	if e.Icon != "" {
		return fmt.Sprintf("[%s %s: %s]", e.Icon, e.Name, effect)
	}
	return fmt.Sprintf("[%s: %s]", e.Name, effect)
}

// rewriteD20 turns the first base d20 term into a roll-two form.
func rewriteD20(f string, state AdvantageState) (string, bool) {
	loc := baseD20Re.FindStringSubmatchIndex(f)
	if loc == nil {
		return f, false
	}
	form := "2d20kh1"
	if state == Disadvantage {
		form = "2d20kl1"
	}
	// Replace only the d20 group, keeping its neighbors.
	start, end := loc[4], loc[5]
	return f[:start] + form + f[end:], true
}

// HasOptionalEffect reports whether any single-use effect could apply to a
// roll with this label. The caller uses it to decide whether to prompt before
// finalizing; the pipeline never applies an optional effect on its own.
func HasOptionalEffect(label string, sess *SessionState) bool {
	cat := Categorize(label)
	for i := range sess.Optional {
		if sess.Optional[i].applies(cat) {
			return true
		}
	}
	return false
}

// ApplyOptionalEffect applies the named single-use effect to an already
// prepared request and removes it from the session. Applying an effect that
// does not match the request's category is a no-op and does not consume it.
func ApplyOptionalEffect(req *Request, sess *SessionState, name string) bool {
	for i := range sess.Optional {
		e := &sess.Optional[i]
		if e.Name != name {
			continue
		}
		if !e.applies(req.Kind) {
			return false
		}
		applyEffect(req, e)
		sess.ConsumeOptional(name)
		return true
	}
	return false
}
