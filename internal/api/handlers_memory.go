package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/memory"
)

// MemoryHandler exposes long-term memory operations over HTTP.
type MemoryHandler struct {
	mem *memory.Manager
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(mem *memory.Manager) *MemoryHandler {
	return &MemoryHandler{mem: mem}
}

// SaveReflection handles POST /api/memory/reflect.
func (h *MemoryHandler) SaveReflection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reflection string `json:"reflection"`
		Category   string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("reflection", req.Reflection); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MaxLen("reflection", &req.Reflection, 2000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result := h.mem.SaveReflection(r.Context(), req.Reflection, req.Category)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   result.Success,
		"result":    result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Remember handles POST /api/memory/remember.
func (h *MemoryHandler) Remember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content    string `json:"content"`
		Importance string `json:"importance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("content", req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MaxLen("content", &req.Content, 2000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result := h.mem.RememberImportant(r.Context(), req.Content, req.Importance)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   result.Success,
		"result":    result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ShowMemories handles GET /api/memory/show.
func (h *MemoryHandler) ShowMemories(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"memories":  collectMemories(r.Context(), h.mem),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MemoryCategory handles GET /api/memory/category?category=pets.
func (h *MemoryHandler) MemoryCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		respond.WriteBadRequest(w, "category is required as a query parameter")
		return
	}

	facts := h.mem.GetUserMemoryCategory(r.Context(), category)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"category":  category,
		"facts":     facts,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Search handles POST /api/search: cross-collection relevance search.
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("query", req.Query); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	hits := h.mem.GetRelevantMemories(r.Context(), req.Query, req.Limit)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"query":   req.Query,
		"results": hits,
		"count":   len(hits),
	})
}

// collectMemories assembles the profile, recent reflections, top memories
// and stats view shared by the show endpoint and the '#show' chat command.
func collectMemories(ctx context.Context, mem *memory.Manager) map[string]interface{} {
	profile := mem.GetUserProfile(ctx)
	return map[string]interface{}{
		"profile":            profile.Profile,
		"recent_reflections": mem.GetUserReflections(ctx, "", 5),
		"important_memories": mem.GetRelevantMemories(ctx, "", 5),
		"memory_stats":       mem.GetMemoryStats(ctx),
	}
}
