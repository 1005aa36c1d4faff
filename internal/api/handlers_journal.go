package api

import (
	"encoding/json"
	"net/http"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/memory"
)

// JournalHandler exposes journal entry endpoints.
type JournalHandler struct {
	mem *memory.Manager
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(mem *memory.Manager) *JournalHandler {
	return &JournalHandler{mem: mem}
}

// StartEntry handles POST /api/journal/start.
func (h *JournalHandler) StartEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("userId", req.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.NonEmpty("text", req.Text); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MaxLen("text", &req.Text, 10000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result := h.mem.SaveJournalEntry(r.Context(), req.UserID, req.Text)
	if !result.Success {
		respond.WriteInternalError(w, result.Error)
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}

// LatestEntry handles GET /api/journal/latest?userId=alice.
func (h *JournalHandler) LatestEntry(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respond.WriteBadRequest(w, "userId is required as a query parameter")
		return
	}

	result := h.mem.GetLatestJournalEntry(r.Context(), userID)
	if !result.Success {
		respond.WriteNotFound(w, result.Error)
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}
