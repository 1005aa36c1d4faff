package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/personality"
)

// PersonalityHandler exposes the personality mode catalog.
type PersonalityHandler struct {
	modes *personality.Manager
}

// NewPersonalityHandler creates a new personality handler
func NewPersonalityHandler(modes *personality.Manager) *PersonalityHandler {
	return &PersonalityHandler{modes: modes}
}

// ListModes handles GET /api/personality/modes.
func (h *PersonalityHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"modes":        h.modes.List(),
		"current_mode": h.modes.Current(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// SetMode handles POST /api/personality/mode.
func (h *PersonalityHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("mode", req.Mode); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.modes.Set(req.Mode); err != nil {
		respond.WriteBadRequest(w, "unknown personality mode: "+req.Mode)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"current_mode": req.Mode,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
