package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/llm"
	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/personality"
)

var languageInstructions = map[string]string{
	"english": "Respond in English. Use clear, accessible language appropriate for mental health support.",
	"sinhala": "Respond in Sinhala (සිංහල). Use culturally appropriate expressions and be mindful of local mental health perspectives. Use respectful and supportive language.",
	"tamil":   "Respond in Tamil (தமிழ்). Use culturally appropriate expressions and be mindful of local mental health perspectives. Use respectful and supportive language.",
}

var errorResponses = map[string]string{
	"english": "I'm sorry, I'm having trouble processing your message right now. Please try again, and if the problem persists, consider reaching out to a mental health professional for immediate support.",
	"sinhala": "මට කණගාටුයි, මම දැන් ඔබේ පණිවිඩය සැකසීමේදී අපහසුතාවයක් ඇත. කරුණාකර නැවත උත්සාහ කරන්න.",
	"tamil":   "மன்னிக்கவும், உங்கள் செய்தியை இப்போது செயல்படுத்துவதில் எனக்கு சிரமம் உள்ளது. தயவுசெய்து மீண்டும் முயற்சிக்கவும்.",
}

// Service runs the chat loop: prompt construction from profile, relevant
// memories, personality and language context, fact extraction with profile
// merge, and short-term buffer maintenance.
type Service struct {
	mem *memory.Manager
	llm llm.Completer
	log zerolog.Logger

	mu       sync.RWMutex
	mode     string
	language string
}

// NewService wires the chat loop over the memory manager and an LLM client.
func NewService(mem *memory.Manager, completer llm.Completer, log zerolog.Logger) *Service {
	return &Service{
		mem:      mem,
		llm:      completer,
		log:      log.With().Str("component", "conversation").Logger(),
		mode:     personality.DefaultMode,
		language: "english",
	}
}

// UpdateSettings changes the active personality mode and response language.
func (s *Service) UpdateSettings(mode, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != "" {
		s.mode = mode
	}
	if language != "" {
		s.language = language
	}
}

// ProcessMessage handles one user message end to end. Any extracted facts are
// merged into the profile and persisted before the memory-update confirmation
// is appended to the response, and the exchange is buffered only after the
// model response is obtained. Model failures degrade to a per-language
// fallback response.
func (s *Service) ProcessMessage(ctx context.Context, userMessage, mode, language string) string {
	s.UpdateSettings(mode, language)
	s.mu.RLock()
	mode, language = s.mode, s.language
	s.mu.RUnlock()

	profile := s.mem.GetUserProfile(ctx).Profile
	system := s.buildSystemPrompt(ctx, userMessage, profile, mode, language)

	facts := ExtractFacts(userMessage)
	feedback := ""
	if len(facts) > 0 {
		res := s.mem.MergeIntoProfile(ctx, facts, MergeFacts)
		if res.Updated {
			feedback = memoryFeedback(facts)
		} else {
			s.log.Warn().Str("error", res.Error).Msg("profile merge failed; skipping memory feedback")
		}
	}

	response, err := s.llm.Complete(ctx, system, userMessage)
	if err != nil {
		s.log.Error().Err(err).Msg("model call failed")
		return errorResponse(language)
	}
	if feedback != "" {
		response = response + "\n\nMemory updated! " + feedback
	}

	s.mem.Buffer().AppendTurn(userMessage, response)
	return strings.TrimSpace(response)
}

func (s *Service) buildSystemPrompt(ctx context.Context, userMessage string, profile model.Profile, mode, language string) string {
	name := profileString(profile, "name", "Friend")
	activity := profileString(profile, "favorite_calming_activity", "not specified yet")
	pets := profileList(profile, "pets", "none mentioned")
	prefs := profileList(profile, "support_preferences", "not specified")

	var sb strings.Builder
	sb.WriteString("You are a compassionate mental wellness coach named Reflective. Speak in a warm and encouraging tone. Be empathetic and supportive.\n\n")
	fmt.Fprintf(&sb, "User profile:\n- Name: %s\n- Favorite calming activity: %s\n- Pets: %s\n- Support preferences: %s\n\n", name, activity, pets, prefs)
	sb.WriteString(personality.PromptContext(mode))
	sb.WriteString("\n\n")
	sb.WriteString(languageContext(language))
	sb.WriteString("\n\n")
	sb.WriteString(s.memoryContext(ctx, userMessage))

	if history := s.mem.Buffer().HistoryText(10); history != "" {
		sb.WriteString("\n\nRecent conversation:\n")
		sb.WriteString(history)
	}
	sb.WriteString("\n\nIf the user shares something about their emotions, reflect back with empathy. If they mention calming activities, affirm them. If the user says \"Store this: ...\", extract and remember it but also confirm in your response.")
	return sb.String()
}

func (s *Service) memoryContext(ctx context.Context, userMessage string) string {
	memories := s.mem.GetRelevantMemories(ctx, userMessage, 3)
	if len(memories) == 0 {
		return "No specific relevant memories found."
	}
	parts := []string{"Relevant memories:"}
	for _, m := range memories {
		kind := "unknown"
		if t, ok := m.Metadata["type"].(string); ok {
			kind = t
		}
		content := m.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		ts := "Unknown time"
		if t, ok := m.Metadata["timestamp"].(string); ok {
			ts = t
		}
		parts = append(parts, fmt.Sprintf("- %s: %s (from %s)", kind, content, ts))
	}
	return strings.Join(parts, "\n")
}

// Summary asks the model for a brief summary of the buffered conversation.
func (s *Service) Summary(ctx context.Context) string {
	history := s.mem.Buffer().HistoryText(10)
	if history == "" {
		return "No recent conversation to summarize."
	}
	prompt := "Please provide a brief summary of this mental health conversation, focusing on:\n" +
		"1. Main concerns or topics discussed\n2. User's emotional state\n" +
		"3. Key advice or strategies mentioned\n4. Any important progress or insights\n\n" +
		"Conversation:\n" + history + "\n\nSummary:"
	out, err := s.llm.Complete(ctx, "", prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("summary generation failed")
		return "Unable to generate conversation summary."
	}
	return strings.TrimSpace(out)
}

// SuggestNextSteps asks the model for next-step suggestions grounded in the
// buffered conversation. Non-JSON model output is wrapped under "general".
func (s *Service) SuggestNextSteps(ctx context.Context, userMessage string) map[string]interface{} {
	prompt := "Based on this mental health conversation, suggest 3-5 helpful next steps or activities for the user. Consider their current state and needs.\n\n" +
		"Recent conversation:\n" + s.mem.Buffer().HistoryText(10) + "\n\n" +
		"Latest message: " + userMessage + "\n\n" +
		"Provide suggestions in the following categories:\n" +
		"1. Immediate coping strategies\n2. Self-care activities\n3. Reflection or journaling prompts\n" +
		"4. Professional resources (if needed)\n5. Long-term wellness goals\n\n" +
		"Format as a JSON object with categories and suggestions."
	out, err := s.llm.Complete(ctx, "", prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("suggestion generation failed")
		return map[string]interface{}{"error": "Unable to generate suggestions"}
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return map[string]interface{}{"general": []interface{}{out}}
	}
	return parsed
}

func memoryFeedback(facts model.FactDelta) string {
	var parts []string
	if name, ok := facts["name"].(string); ok {
		parts = append(parts, fmt.Sprintf("I've stored that your name is %s. This will help me personalize our conversations.", name))
	}
	if pets, ok := facts["pets"].([]string); ok {
		parts = append(parts, fmt.Sprintf("I've stored that your pet's name is %s.", strings.Join(pets, ", ")))
	}
	if prefs, ok := facts["support_preferences"].([]string); ok {
		parts = append(parts, fmt.Sprintf("I've stored your support preference: %s.", strings.Join(prefs, ", ")))
	}
	if notes, ok := facts["notes"].([]string); ok {
		parts = append(parts, fmt.Sprintf("I've stored this note: %s.", strings.Join(notes, ", ")))
	}
	return strings.Join(parts, " ")
}

func errorResponse(language string) string {
	if r, ok := errorResponses[language]; ok {
		return r
	}
	return errorResponses["english"]
}

func languageContext(language string) string {
	if c, ok := languageInstructions[language]; ok {
		return c
	}
	return languageInstructions["english"]
}

func profileString(p model.Profile, key, fallback string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func profileList(p model.Profile, key, fallback string) string {
	raw, ok := p[key]
	if !ok {
		return fallback
	}
	var items []string
	switch vv := raw.(type) {
	case []string:
		items = vv
	case []interface{}:
		for _, it := range vv {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
