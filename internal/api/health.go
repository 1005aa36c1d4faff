package api

import (
	"net/http"
	"time"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store vecstore.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store vecstore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// CheckHealth handles GET /api/health.
// Always returns 200; body reports healthy/unhealthy per dependency.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	storeStatus := "healthy"
	if _, err := h.store.Count(r.Context(), model.CollectionReflections); err != nil {
		storeStatus = "unhealthy"
	}

	status := "healthy"
	if storeStatus != "healthy" {
		status = "degraded"
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"services": map[string]string{
			"memory_store": storeStatus,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
