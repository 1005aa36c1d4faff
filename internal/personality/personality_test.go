package personality

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflective-ai/reflective-server/internal/model"
)

func TestManagerDefaultsToCalmCoach(t *testing.T) {
	m := NewManager()
	assert.Equal(t, "calm_coach", m.Current())
}

func TestSetSwitchesMode(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Set("wise_mentor"))
	assert.Equal(t, "wise_mentor", m.Current())
}

func TestSetRejectsUnknownMode(t *testing.T) {
	m := NewManager()
	err := m.Set("sarcastic_robot")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Equal(t, "calm_coach", m.Current())
}

func TestListReturnsAllModesSorted(t *testing.T) {
	m := NewManager()
	list := m.List()
	require.Len(t, list, 5)

	ids := make([]string, len(list))
	for i, md := range list {
		ids[i] = md.ID
	}
	assert.Equal(t, []string{
		"assertive_buddy", "calm_coach", "playful_companion", "practical_helper", "wise_mentor",
	}, ids)
}

func TestPromptContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, PromptContext("calm_coach"), PromptContext("nonexistent"))
	assert.NotEmpty(t, PromptContext("playful_companion"))
	assert.NotEqual(t, PromptContext("calm_coach"), PromptContext("playful_companion"))
}
