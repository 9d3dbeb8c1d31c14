package relay

import (
	"fmt"
	"io"
	"strings"
)

// Message is a finalized roll ready for display. The wire format past this
// boundary belongs to whatever client is attached; we only produce the text.
type Message struct {
	Label       string
	Formula     string
	Total       int
	Breakdown   string
	Annotations []string
	Note        string
}

// Relay delivers finalized messages to an attached client.
type Relay interface {
	Send(msg Message) error
}

// Format renders a Message as a single display line.
func Format(msg Message) string {
	var b strings.Builder
	b.WriteString(msg.Label)
	for _, ann := range msg.Annotations {
		b.WriteString(" ")
		b.WriteString(ann)
	}
	b.WriteString(": ")
	if msg.Breakdown != "" {
		fmt.Fprintf(&b, "%s = %d (%s)", msg.Formula, msg.Total, msg.Breakdown)
	} else {
		b.WriteString(msg.Formula)
	}
	if msg.Note != "" {
		b.WriteString(" - ")
		b.WriteString(msg.Note)
	}
	return b.String()
}

// Console is a Relay writing formatted lines to a stream, one per message.
type Console struct {
	Out io.Writer
}

func (c *Console) Send(msg Message) error {
	_, err := fmt.Fprintln(c.Out, Format(msg))
	return err
}

// Buffer collects messages for inspection, mainly in tests and the TUI.
type Buffer struct {
	Messages []Message
}

func (b *Buffer) Send(msg Message) error {
	b.Messages = append(b.Messages, msg)
	return nil
}
