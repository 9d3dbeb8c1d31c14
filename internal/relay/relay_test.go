package relay

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	msg := Message{
		Label:       "Guiding Bolt",
		Formula:     "1d20+7",
		Total:       19,
		Breakdown:   "12+7",
		Annotations: []string{"[brain Bless: +1d4]"},
	}

	assert.Equal(t, "Guiding Bolt [brain Bless: +1d4]: 1d20+7 = 19 (12+7)", Format(msg))
}

func TestFormatWithoutBreakdown(t *testing.T) {
	msg := Message{Label: "Counterspell", Formula: "manual adjudication", Note: "ask your GM"}

	assert.Equal(t, "Counterspell: manual adjudication - ask your GM", Format(msg))
}

func TestConsoleSend(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf}

	require.NoError(t, c.Send(Message{Label: "Dagger", Formula: "1d4+3", Total: 6, Breakdown: "3+3"}))
	assert.Equal(t, "Dagger: 1d4+3 = 6 (3+3)\n", buf.String())
}

func TestBufferSend(t *testing.T) {
	var b Buffer
	require.NoError(t, b.Send(Message{Label: "a"}))
	require.NoError(t, b.Send(Message{Label: "b"}))
	assert.Len(t, b.Messages, 2)
	assert.Equal(t, "b", b.Messages[1].Label)
}
