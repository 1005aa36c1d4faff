package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/reflective-ai/reflective-server/internal/api/respond"
	"github.com/reflective-ai/reflective-server/internal/api/validate"
	"github.com/reflective-ai/reflective-server/internal/tasks"
)

// TaskHandler exposes task CRUD plus analytics, upcoming and suggestions.
type TaskHandler struct {
	tasks *tasks.Manager
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskMgr *tasks.Manager) *TaskHandler {
	return &TaskHandler{tasks: taskMgr}
}

// ListTasks handles GET /api/tasks with optional status/category filters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := h.tasks.List(r.Context(), q.Get("status"), q.Get("category"))
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": list,
		"count": len(list),
	})
}

// AddTask handles POST /api/tasks.
func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		Priority       string `json:"priority"`
		DueDate        string `json:"due_date"`
		Category       string `json:"category"`
		WellnessImpact string `json:"wellness_impact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.NonEmpty("title", req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result := h.tasks.Add(r.Context(), req.Title, req.Description, req.Priority, req.DueDate, req.Category, req.WellnessImpact)
	if !result.Success {
		respond.WriteInternalError(w, result.Error)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"task":         result.Task,
		"motivation":   result.Motivation,
		"wellness_tip": result.WellnessTip,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// UpdateTask handles PUT /api/tasks/{taskId}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	result := h.tasks.Update(r.Context(), taskID, updates)
	if !result.Success {
		respond.WriteNotFound(w, result.Error)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"task":        result.Task,
		"celebration": result.Celebration,
	})
}

// DeleteTask handles DELETE /api/tasks/{taskId}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	ok := h.tasks.Delete(r.Context(), taskID)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": ok})
}

// Analytics handles GET /api/tasks/analytics?days=30.
func (h *TaskHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days, err := validate.Days(r.URL.Query().Get("days"), 30)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"analytics": h.tasks.GetAnalytics(r.Context(), days),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Upcoming handles GET /api/tasks/upcoming?days=7.
func (h *TaskHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, err := validate.Days(r.URL.Query().Get("days"), 7)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	list := h.tasks.Upcoming(r.Context(), days)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"tasks":     list,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Suggested handles GET /api/tasks/suggested?mood=stressed.
func (h *TaskHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	var userContext map[string]interface{}
	if m := r.URL.Query().Get("mood"); m != "" {
		userContext = map[string]interface{}{"mood": m}
	}

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": h.tasks.SuggestDaily(userContext),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
