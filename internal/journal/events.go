// Package journal persists sheet mutations as an append-only event log.
// The engine never writes the sheet; the caller turns each committed
// resolution into events, appends them here, and replays the log over a
// freshly loaded sheet to recover session state.
package journal

import (
	"fmt"
	"strings"

	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/roll"
)

// EventType discriminates events in the serialized log.
type EventType string

const (
	EventCostsApplied    EventType = "CostsAppliedEvent"
	EventEffectConsumed  EventType = "EffectConsumedEvent"
	EventConcentration   EventType = "ConcentrationEvent"
	EventRest            EventType = "RestEvent"
)

// Event is one durable state change. Apply folds it onto the sheet and the
// session state.
type Event interface {
	Type() EventType
	Apply(sheet *character.Sheet, sess *roll.SessionState) error
	Message() string
}

// CostsAppliedEvent records the resource deltas of a committed cast or roll.
type CostsAppliedEvent struct {
	Source string                   `json:"source"`
	Costs  []character.ResourceCost `json:"costs"`
}

func (e *CostsAppliedEvent) Type() EventType { return EventCostsApplied }
func (e *CostsAppliedEvent) Apply(sheet *character.Sheet, sess *roll.SessionState) error {
	return sheet.ApplyCosts(e.Costs)
}
func (e *CostsAppliedEvent) Message() string {
	parts := make([]string, 0, len(e.Costs))
	for _, c := range e.Costs {
		parts = append(parts, fmt.Sprintf("%s -%d", c.Key, c.Amount))
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(parts, ", "))
}

// EffectConsumedEvent records a single-use optional effect being spent.
type EffectConsumedEvent struct {
	Name string `json:"name"`
}

func (e *EffectConsumedEvent) Type() EventType { return EventEffectConsumed }
func (e *EffectConsumedEvent) Apply(sheet *character.Sheet, sess *roll.SessionState) error {
	sess.ConsumeOptional(e.Name)
	return nil
}
func (e *EffectConsumedEvent) Message() string {
	return e.Name + " consumed"
}

// ConcentrationEvent starts or ends tracking of a maintained effect.
type ConcentrationEvent struct {
	Spell  string `json:"spell"`
	Active bool   `json:"active"`
}

func (e *ConcentrationEvent) Type() EventType { return EventConcentration }
func (e *ConcentrationEvent) Apply(sheet *character.Sheet, sess *roll.SessionState) error {
	if e.Active {
		sess.Concentration = e.Spell
	} else if sess.Concentration == e.Spell {
		sess.Concentration = ""
	}
	return nil
}
func (e *ConcentrationEvent) Message() string {
	if e.Active {
		return "concentrating on " + e.Spell
	}
	return "concentration on " + e.Spell + " ended"
}

// RestEvent restores every resource and slot pool to its maximum.
type RestEvent struct{}

func (e *RestEvent) Type() EventType { return EventRest }
func (e *RestEvent) Apply(sheet *character.Sheet, sess *roll.SessionState) error {
	for i := range sheet.Resources {
		sheet.Resources[i].Current = sheet.Resources[i].Max
	}
	for level, slot := range sheet.SpellSlots {
		slot.Current = slot.Max
		sheet.SpellSlots[level] = slot
	}
	if sheet.Pact != nil {
		sheet.Pact.Current = sheet.Pact.Max
	}
	sess.Concentration = ""
	return nil
}
func (e *RestEvent) Message() string { return "long rest" }
