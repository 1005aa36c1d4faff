// Package personality holds the assistant's selectable conversation styles.
package personality

import (
	"fmt"
	"sort"
	"sync"

	"github.com/reflective-ai/reflective-server/internal/model"
)

// DefaultMode is used when no mode has been selected or an unknown mode is
// requested.
const DefaultMode = "calm_coach"

// Mode describes one conversation style.
type Mode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Specialties   []string `json:"specialties"`
	PromptContext string   `json:"-"`
}

var modes = map[string]Mode{
	"calm_coach": {
		ID:          "calm_coach",
		Name:        "Calm Coach",
		Description: "A gentle, patient, and nurturing guide who speaks softly and offers reassuring guidance",
		Specialties: []string{"Anxiety management", "Mindfulness practices", "Stress reduction", "Self-compassion building"},
		PromptContext: "You are a calm, patient, and nurturing coach. Speak gently and offer reassuring guidance. " +
			"Focus on mindfulness and gradual progress.",
	},
	"assertive_buddy": {
		ID:          "assertive_buddy",
		Name:        "Assertive Buddy",
		Description: "An encouraging and motivational friend who helps build confidence and take action",
		Specialties: []string{"Motivation building", "Confidence boosting", "Goal setting", "Taking action"},
		PromptContext: "You are an encouraging and motivational friend. Be direct but supportive, help users take " +
			"action and build confidence. Use an energetic but caring tone.",
	},
	"playful_companion": {
		ID:          "playful_companion",
		Name:        "Playful Companion",
		Description: "A lighthearted and optimistic friend who uses appropriate humor and positivity",
		Specialties: []string{"Mood lifting", "Perspective shifting", "Stress relief through humor"},
		PromptContext: "You are a lighthearted and optimistic companion. Use humor appropriately, keep things " +
			"positive, and help users see the bright side while still being supportive of their struggles.",
	},
	"wise_mentor": {
		ID:          "wise_mentor",
		Name:        "Wise Mentor",
		Description: "A thoughtful and experienced guide who provides deep insights and reflective questions",
		Specialties: []string{"Self-discovery", "Personal growth", "Life transitions", "Values clarification"},
		PromptContext: "You are a thoughtful and experienced mentor. Provide deep insights, ask reflective " +
			"questions, and guide users toward self-discovery and growth.",
	},
	"practical_helper": {
		ID:          "practical_helper",
		Name:        "Practical Helper",
		Description: "A solution-focused assistant who provides concrete advice and actionable strategies",
		Specialties: []string{"Problem solving", "Action planning", "Habit building", "Time management"},
		PromptContext: "You are a solution-focused helper. Provide concrete advice, practical strategies, and " +
			"actionable steps. Be organized and systematic in your approach.",
	},
}

// Manager tracks the currently selected mode.
type Manager struct {
	mu      sync.RWMutex
	current string
}

func NewManager() *Manager {
	return &Manager{current: DefaultMode}
}

// Current returns the selected mode id.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set selects a mode; unknown ids fail with model.ErrValidation.
func (m *Manager) Set(mode string) error {
	if _, ok := modes[mode]; !ok {
		return fmt.Errorf("%w: unknown personality mode %q", model.ErrValidation, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = mode
	return nil
}

// List returns all modes sorted by id.
func (m *Manager) List() []Mode {
	out := make([]Mode, 0, len(modes))
	for _, md := range modes {
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PromptContext returns the system-prompt fragment for the given mode,
// falling back to the default mode when unknown.
func PromptContext(mode string) string {
	if md, ok := modes[mode]; ok {
		return md.PromptContext
	}
	return modes[DefaultMode].PromptContext
}
