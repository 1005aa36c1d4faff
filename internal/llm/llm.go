// Package llm provides the chat-completion client used to generate
// assistant responses, summaries and suggestions.
package llm

import "context"

// Completer generates a chat completion from a system prompt and a user
// message. Implementations return model.ErrModelUnavailable (wrapped) when
// the backing model cannot be reached so callers can degrade to a canned
// fallback response.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
