package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/conversation"
	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/mood"
	"github.com/reflective-ai/reflective-server/internal/personality"
	"github.com/reflective-ai/reflective-server/internal/sentiment"
	"github.com/reflective-ai/reflective-server/internal/tasks"
)

// ChatHandler drives the conversational endpoint, including the inline
// '#' commands that shortcut straight into memory, mood and task operations.
type ChatHandler struct {
	chat  *conversation.Service
	mem   *memory.Manager
	moods *mood.Tracker
	tasks *tasks.Manager
	modes *personality.Manager
	log   zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *conversation.Service, mem *memory.Manager, moods *mood.Tracker, taskMgr *tasks.Manager, modes *personality.Manager, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, mem: mem, moods: moods, tasks: taskMgr, modes: modes, log: log}
}

type chatRequest struct {
	Message         string `json:"message"`
	PersonalityMode string `json:"personality_mode"`
	Language        string `json:"language"`

	// Optional command context carried alongside '#' commands.
	Category   string `json:"category"`
	Note       string `json:"note"`
	Mood       string `json:"mood"`
	Priority   string `json:"priority"`
	DueDate    string `json:"due_date"`
	Importance string `json:"importance"`
	Urgency    string `json:"urgency"`
	Location   string `json:"location"`
}

// ProcessChat handles POST /api/chat.
func (h *ChatHandler) ProcessChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("message", req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MaxLen("message", &req.Message, 4000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if req.PersonalityMode == "" {
		req.PersonalityMode = personality.DefaultMode
	}
	if req.Language == "" {
		req.Language = "english"
	}

	if err := h.modes.Set(req.PersonalityMode); err != nil {
		h.log.Warn().Str("mode", req.PersonalityMode).Msg("unknown personality mode, using default")
		req.PersonalityMode = personality.DefaultMode
	}

	response := h.chat.ProcessMessage(r.Context(), req.Message, req.PersonalityMode, req.Language)

	var commandResult map[string]interface{}
	if strings.HasPrefix(req.Message, "#") {
		commandResult = h.processCommand(r, req)
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"response":         response,
		"sentiment":        sentiment.Analyze(req.Message),
		"personality_mode": req.PersonalityMode,
		"language":         req.Language,
		"command_result":   commandResult,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

// processCommand dispatches '#reflect', '#mood', '#todo', '#remember',
// '#sos' and '#show'. The command keyword is stripped; the remainder of
// the message is the command payload.
func (h *ChatHandler) processCommand(r *http.Request, req chatRequest) map[string]interface{} {
	ctx := r.Context()

	command, content, _ := strings.Cut(req.Message, " ")
	command = strings.ToLower(command)
	content = strings.TrimSpace(content)

	switch command {
	case "#reflect":
		result := h.mem.SaveReflection(ctx, content, req.Category)
		return map[string]interface{}{"type": "reflection", "success": result.Success, "result": result}

	case "#mood":
		moodValue := content
		if moodValue == "" {
			moodValue = req.Mood
		}
		if moodValue == "" {
			moodValue = "neutral"
		}
		result := h.moods.LogMood(ctx, moodValue, req.Note, nil)
		return map[string]interface{}{"type": "mood", "success": result.Success, "result": result}

	case "#todo":
		result := h.tasks.Add(ctx, content, "", req.Priority, req.DueDate, "", "")
		return map[string]interface{}{"type": "task", "success": result.Success, "task": result.Task, "result": result}

	case "#remember":
		result := h.mem.RememberImportant(ctx, content, req.Importance)
		return map[string]interface{}{"type": "remember", "success": result.Success, "result": result}

	case "#sos":
		result := h.handleSOS(r, content, req)
		return map[string]interface{}{"type": "sos", "success": true, "result": result}

	case "#show":
		return map[string]interface{}{"type": "show_memories", "success": true, "result": collectMemories(ctx, h.mem)}

	default:
		return map[string]interface{}{"type": "unknown", "success": false, "error": "Unknown command"}
	}
}

// handleSOS logs the request for tracking and returns an urgency-appropriate
// support message plus the crisis resource list.
func (h *ChatHandler) handleSOS(r *http.Request, content string, req chatRequest) map[string]interface{} {
	urgency := req.Urgency
	if urgency == "" {
		urgency = "medium"
	}
	location := req.Location
	if location == "" {
		location = "unknown"
	}

	save := h.mem.SaveSOSRequest(r.Context(), model.SOSRequest{
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Urgency:   urgency,
		Location:  location,
	})
	if !save.Success {
		h.log.Error().Str("error", save.Error).Msg("failed to log SOS request")
	}

	return map[string]interface{}{
		"message":   sosResponse(urgency),
		"resources": emergencyResources(),
		"logged":    save.Success,
	}
}

func sosResponse(urgency string) string {
	if urgency == "high" {
		return "I'm here for you. If you're in immediate danger, please contact emergency services " +
			"(911, 988 Suicide & Crisis Lifeline). You're not alone - there are people who want to help. " +
			"Would you like me to provide some immediate coping strategies?"
	}
	return "I hear that you're going through a difficult time. Remember that it's okay to ask for help. " +
		"I'm here to listen and support you. Would you like to talk about what's on your mind or " +
		"explore some coping techniques together?"
}

func emergencyResources() []map[string]string {
	return []map[string]string{
		{
			"name":        "988 Suicide & Crisis Lifeline",
			"phone":       "988",
			"description": "24/7 crisis support",
			"website":     "https://988lifeline.org",
		},
		{
			"name":        "Crisis Text Line",
			"phone":       "Text HOME to 741741",
			"description": "24/7 text-based crisis support",
			"website":     "https://www.crisistextline.org",
		},
		{
			"name":        "NAMI (National Alliance on Mental Illness)",
			"phone":       "1-800-950-NAMI",
			"description": "Mental health information and support",
			"website":     "https://www.nami.org",
		},
	}
}
