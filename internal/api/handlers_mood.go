package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/mood"
)

// MoodHandler exposes mood logging and analytics.
type MoodHandler struct {
	tracker *mood.Tracker
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(tracker *mood.Tracker) *MoodHandler {
	return &MoodHandler{tracker: tracker}
}

// LogMood handles POST /api/mood. The mood value may be a label, a number
// or a numeric string.
func (h *MoodHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood    interface{}            `json:"mood"`
		Note    string                 `json:"note"`
		Context map[string]interface{} `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if req.Mood == nil {
		respond.WriteBadRequest(w, "mood is required")
		return
	}

	result := h.tracker.LogMood(r.Context(), req.Mood, req.Note, req.Context)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   result.Success,
		"result":    result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Analytics handles GET /api/mood/analytics?days=7.
func (h *MoodHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days, err := validate.Days(r.URL.Query().Get("days"), 7)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	analytics := h.tracker.GetAnalytics(r.Context(), days)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analytics": analytics,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
