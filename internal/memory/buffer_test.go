package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferHistoryOrdering(t *testing.T) {
	b := NewConversationBuffer(2000)
	b.AppendTurn("hello", "hi there")
	b.AppendTurn("how are you", "doing well")

	h := b.HistoryText(10)
	lines := strings.Split(h, "\n")
	assert.Equal(t, []string{
		"Human: hello",
		"AI: hi there",
		"Human: how are you",
		"AI: doing well",
	}, lines)
}

func TestBufferHistoryLimitKeepsNewest(t *testing.T) {
	b := NewConversationBuffer(0)
	b.AppendTurn("one", "ack one")
	b.AppendTurn("two", "ack two")
	b.AppendTurn("three", "ack three")

	h := b.HistoryText(2)
	assert.Equal(t, "Human: three\nAI: ack three", h)
}

func TestBufferTokenBudgetEvictsOldestFirst(t *testing.T) {
	long := strings.Repeat("x", 400) // ~100 tokens per message
	b := NewConversationBuffer(250)

	b.AppendTurn(long, long) // ~200 tokens, fits
	b.AppendTurn(long, long) // ~400 total, oldest pair evicted

	assert.Equal(t, 2, b.MessageCount())
	assert.True(t, strings.HasPrefix(b.HistoryText(10), "Human: "+long))
}

func TestBufferClear(t *testing.T) {
	b := NewConversationBuffer(1000)
	b.AppendTurn("hi", "hello")
	b.Clear()
	assert.Equal(t, 0, b.MessageCount())
	assert.Equal(t, "", b.HistoryText(10))
}
