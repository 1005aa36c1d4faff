// Package memory holds the conversational state of the assistant: a
// short-term buffer of recent turns and a long-term manager over the
// categorized vector collections.
package memory

import (
	"fmt"
	"strings"
	"sync"
)

// turn is one buffered utterance. Human and assistant entries alternate;
// AppendTurn always adds them as a pair.
type turn struct {
	role string // "Human" or "AI"
	text string
}

// ConversationBuffer is the short-term dialogue memory for one session.
// It keeps an ordered sequence of turns bounded by a token budget; when the
// budget is exceeded the oldest turns are evicted first.
type ConversationBuffer struct {
	mu        sync.Mutex
	turns     []turn
	maxTokens int
}

// NewConversationBuffer creates a buffer with the given token budget.
// A non-positive budget disables eviction.
func NewConversationBuffer(maxTokens int) *ConversationBuffer {
	return &ConversationBuffer{maxTokens: maxTokens}
}

// AppendTurn adds a human/assistant pair as a single unit.
func (b *ConversationBuffer) AppendTurn(humanText, aiText string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, turn{role: "Human", text: humanText}, turn{role: "AI", text: aiText})
	b.evictLocked()
}

// estimateTokens approximates the token count as one token per four bytes.
func estimateTokens(s string) int {
	return len(s) / 4
}

func (b *ConversationBuffer) evictLocked() {
	if b.maxTokens <= 0 {
		return
	}
	total := 0
	for _, t := range b.turns {
		total += estimateTokens(t.text)
	}
	// drop whole pairs so the history never starts mid-exchange
	for total > b.maxTokens && len(b.turns) >= 2 {
		total -= estimateTokens(b.turns[0].text) + estimateTokens(b.turns[1].text)
		b.turns = b.turns[2:]
	}
}

// HistoryText formats the most recent maxEntries entries as alternating
// "Human:"/"AI:" lines, oldest first. maxEntries <= 0 uses the default of 10.
func (b *ConversationBuffer) HistoryText(maxEntries int) string {
	if maxEntries <= 0 {
		maxEntries = 10
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	start := 0
	if len(b.turns) > maxEntries {
		start = len(b.turns) - maxEntries
	}
	var sb strings.Builder
	for _, t := range b.turns[start:] {
		fmt.Fprintf(&sb, "%s: %s\n", t.role, t.text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// MessageCount reports how many entries are currently buffered.
func (b *ConversationBuffer) MessageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// MaxTokenLimit reports the configured budget.
func (b *ConversationBuffer) MaxTokenLimit() int { return b.maxTokens }

// Clear resets the buffer to empty.
func (b *ConversationBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = nil
}
