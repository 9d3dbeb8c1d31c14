package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/suderio/arcane-ledger/internal/character"
	"github.com/suderio/arcane-ledger/internal/roll"
)

// EventWrapper facilitates serialization of polymorphic events.
type EventWrapper struct {
	Type  EventType       `json:"type"`
	Event json.RawMessage `json:"data"`
}

// Store handles append-only storing of the event log.
type Store struct {
	file *os.File
}

// NewStore opens or creates the file at path for appending lines.
func NewStore(path string) (*Store, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	return &Store{file: file}, nil
}

// Append marshals an Event onto the jsonl log.
func (s *Store) Append(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	wrapper := EventWrapper{
		Type:  evt.Type(),
		Event: data,
	}

	wrapperData, err := json.Marshal(wrapper)
	if err != nil {
		return err
	}

	if _, err := s.file.Write(append(wrapperData, '\n')); err != nil {
		return err
	}
	return s.file.Sync()
}

// Load replays all jsonl lines and unpacks them into an Event slice.
func (s *Store) Load() ([]Event, error) {
	var events []Event

	// Reset file pointer to beginning
	if _, err := s.file.Seek(0, 0); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(s.file)
	for scanner.Scan() {
		var wrapper EventWrapper
		if err := json.Unmarshal(scanner.Bytes(), &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode wrapper: %w", err)
		}

		var evt Event
		switch wrapper.Type {
		case EventCostsApplied:
			evt = &CostsAppliedEvent{}
		case EventEffectConsumed:
			evt = &EffectConsumedEvent{}
		case EventConcentration:
			evt = &ConcentrationEvent{}
		case EventRest:
			evt = &RestEvent{}
		default:
			return nil, fmt.Errorf("unknown event type in log: %s", wrapper.Type)
		}

		if err := json.Unmarshal(wrapper.Event, evt); err != nil {
			return nil, fmt.Errorf("failed to parse event data into specific type: %w", err)
		}

		events = append(events, evt)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Close handles safe shutdown.
func (s *Store) Close() error {
	return s.file.Close()
}

// Replay folds an event sequence onto a freshly loaded sheet and session.
func Replay(events []Event, sheet *character.Sheet, sess *roll.SessionState) error {
	for _, evt := range events {
		if err := evt.Apply(sheet, sess); err != nil {
			return fmt.Errorf("failed to apply %s: %w", evt.Type(), err)
		}
	}
	return nil
}
