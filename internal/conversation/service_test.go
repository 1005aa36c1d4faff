package conversation

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflective-ai/reflective-server/internal/llm"
	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore/sqlite"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func newTestService(t *testing.T, completer llm.Completer) (*Service, *memory.Manager) {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "conv.db"), fixedEmbedder{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mem := memory.NewManager(context.Background(), st, memory.NewConversationBuffer(2000), zerolog.Nop())
	return NewService(mem, completer, zerolog.Nop()), mem
}

func echoCompleter(reply string) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return reply, nil
	})
}

func TestProcessMessagePersistsFactsBeforeFeedback(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, echoCompleter("That's lovely, Bruno sounds like a great dog."))

	resp := svc.ProcessMessage(ctx, "Store this: my dog's name is Bruno", "", "")
	assert.Contains(t, resp, "Memory updated!")
	assert.Contains(t, resp, "Bruno")

	// confirmation reflected just-persisted state
	prof := mem.GetUserProfile(ctx)
	require.True(t, prof.Exists)
	assert.ElementsMatch(t, []interface{}{"Bruno"}, prof.Profile["pets"])
}

func TestProcessMessageFeedbackAppendedOnce(t *testing.T) {
	svc, _ := newTestService(t, echoCompleter("Nice to meet you!"))

	resp := svc.ProcessMessage(context.Background(), "my name is John Smith", "", "")
	assert.Equal(t, 1, strings.Count(resp, "Memory updated!"))
	assert.Contains(t, resp, "John Smith")
}

func TestProcessMessageBuffersAfterResponse(t *testing.T) {
	svc, mem := newTestService(t, echoCompleter("Hello there."))

	svc.ProcessMessage(context.Background(), "hi", "", "")
	h := mem.Buffer().HistoryText(10)
	assert.Equal(t, "Human: hi\nAI: Hello there.", h)
}

func TestProcessMessageModelFailureFallsBack(t *testing.T) {
	failing := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("connection refused")
	})
	svc, mem := newTestService(t, failing)

	resp := svc.ProcessMessage(context.Background(), "hello", "", "english")
	assert.Contains(t, resp, "I'm having trouble processing your message")
	assert.Equal(t, 0, mem.Buffer().MessageCount(), "failed exchanges are not buffered")
}

func TestProcessMessageProfileFlowsIntoPrompt(t *testing.T) {
	ctx := context.Background()
	var captured string
	capturing := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		captured = system
		return "ok", nil
	})
	svc, mem := newTestService(t, capturing)

	mem.UpdateUserProfile(ctx, model.Profile{
		"name": "Alex",
		"pets": []interface{}{"Bruno"},
	})

	svc.ProcessMessage(ctx, "how are you", "wise_mentor", "english")
	assert.Contains(t, captured, "Name: Alex")
	assert.Contains(t, captured, "Pets: Bruno")
	assert.Contains(t, captured, "thoughtful and experienced mentor")
}

func TestSummaryWithEmptyBuffer(t *testing.T) {
	svc, _ := newTestService(t, echoCompleter("unused"))
	assert.Equal(t, "No recent conversation to summarize.", svc.Summary(context.Background()))
}

func TestSuggestNextStepsWrapsNonJSON(t *testing.T) {
	svc, _ := newTestService(t, echoCompleter("take a short walk"))
	out := svc.SuggestNextSteps(context.Background(), "feeling stuck")
	assert.Equal(t, []interface{}{"take a short walk"}, out["general"])
}
