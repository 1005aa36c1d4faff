// Package tasks manages wellness-focused tasks: creation with tag and effort
// heuristics, allow-listed updates with idempotent completion stamping, and
// completion analytics. Persistence goes through the memory manager.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
)

var priorityLevels = map[string]int{
	model.PriorityLow:    1,
	model.PriorityMedium: 2,
	model.PriorityHigh:   3,
	model.PriorityUrgent: 4,
}

// Categories are the fixed wellness-focused task categories.
var Categories = map[string]string{
	"self_care":   "Self-care and wellness activities",
	"mindfulness": "Mindfulness and meditation practices",
	"exercise":    "Physical activity and movement",
	"social":      "Social connections and relationships",
	"work":        "Work and professional tasks",
	"personal":    "Personal goals and projects",
	"health":      "Health and medical appointments",
	"learning":    "Learning and skill development",
	"creative":    "Creative activities and hobbies",
	"household":   "Home and daily maintenance",
}

// AddResult reports task creation.
type AddResult struct {
	Success     bool        `json:"success"`
	Task        *model.Task `json:"task,omitempty"`
	Motivation  string      `json:"motivation,omitempty"`
	WellnessTip string      `json:"wellness_tip,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// UpdateResult reports a task update.
type UpdateResult struct {
	Success     bool        `json:"success"`
	Task        *model.Task `json:"task,omitempty"`
	Celebration string      `json:"celebration,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Analytics summarizes task completion over a period.
type Analytics struct {
	Period                  string         `json:"period"`
	TotalTasks              int            `json:"total_tasks"`
	CompletedTasks          int            `json:"completed_tasks,omitempty"`
	CompletionRate          float64        `json:"completion_rate,omitempty"`
	CategoryBreakdown       map[string]int `json:"category_breakdown,omitempty"`
	PriorityBreakdown       map[string]int `json:"priority_breakdown,omitempty"`
	WellnessImpactBreakdown map[string]int `json:"wellness_impact_breakdown,omitempty"`
	Insights                []string       `json:"insights,omitempty"`
	Recommendations         []string       `json:"recommendations,omitempty"`
	Message                 string         `json:"message,omitempty"`
	Error                   string         `json:"error,omitempty"`
}

// DailySuggestions is a set of suggested wellness activities for the day.
type DailySuggestions struct {
	Date        string              `json:"date"`
	Suggestions map[string][]string `json:"suggestions"`
	Tip         string              `json:"tip"`
}

// Manager implements the task operations.
type Manager struct {
	mem *memory.Manager
	log zerolog.Logger
	now func() time.Time
}

// NewManager wires the task manager over the memory manager.
func NewManager(mem *memory.Manager, log zerolog.Logger) *Manager {
	return &Manager{
		mem: mem,
		log: log.With().Str("component", "tasks").Logger(),
		now: time.Now,
	}
}

// Add creates a pending task. Unknown priorities fall back to medium and
// unknown categories to personal; an unparseable due date is dropped.
func (m *Manager) Add(ctx context.Context, title, description, priority, dueDate, category, wellnessImpact string) AddResult {
	if strings.TrimSpace(title) == "" {
		return AddResult{Error: "task title is required"}
	}
	if _, ok := priorityLevels[priority]; !ok {
		priority = model.PriorityMedium
	}
	if _, ok := Categories[category]; !ok {
		category = "personal"
	}
	if wellnessImpact == "" {
		wellnessImpact = model.ImpactNeutral
	}

	task := model.Task{
		ID:                  uuid.NewString(),
		Title:               strings.TrimSpace(title),
		Description:         strings.TrimSpace(description),
		Priority:            priority,
		Category:            category,
		WellnessImpact:      wellnessImpact,
		Status:              model.StatusPending,
		CreatedAt:           m.now().UTC().Format(time.RFC3339),
		DueDate:             parseDueDate(dueDate),
		Tags:                extractTags(title + " " + description),
		EstimatedEffort:     estimateEffort(title, description),
		WellnessSuggestions: wellnessSuggestions(category, wellnessImpact),
	}

	if res := m.mem.SaveTask(ctx, task); !res.Success {
		return AddResult{Error: res.Error}
	}
	return AddResult{
		Success:     true,
		Task:        &task,
		Motivation:  motivation(task),
		WellnessTip: wellnessTip(task.Category),
	}
}

// parseDueDate normalizes a due date to RFC3339 UTC, tolerating a trailing Z
// and a few common date formats. Unparseable input yields "".
func parseDueDate(s string) string {
	if s == "" {
		return ""
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Format(time.RFC3339)
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "01/02/2006", "02/01/2006"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// List returns tasks sorted by descending priority then earliest due date,
// optionally filtered by status and category. Read failures degrade to an
// empty list.
func (m *Manager) List(ctx context.Context, status, category string) []model.Task {
	all, err := m.mem.Tasks(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("list tasks failed")
		return []model.Task{}
	}
	out := make([]model.Task, 0, len(all))
	for _, t := range all {
		if status != "" && t.Status != status {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityLevels[out[i].Priority], priorityLevels[out[j].Priority]
		if pi != pj {
			return pi > pj
		}
		return dueKey(out[i].DueDate) < dueKey(out[j].DueDate)
	})
	return out
}

// tasks without a due date sort last
func dueKey(due string) string {
	if due == "" {
		return "9999-12-31"
	}
	return due
}

var allowedUpdates = map[string]bool{
	"title": true, "description": true, "priority": true, "category": true,
	"status": true, "due_date": true, "wellness_impact": true,
}

// Update applies allow-listed field updates to a task. The transition into
// completed stamps completed_at exactly once; re-completing an already
// completed task leaves the stamp unchanged.
func (m *Manager) Update(ctx context.Context, taskID string, updates map[string]interface{}) UpdateResult {
	task, err := m.mem.Task(ctx, taskID)
	if err != nil {
		m.log.Warn().Err(err).Str("task_id", taskID).Msg("task update target missing")
		return UpdateResult{Error: "Task not found"}
	}

	for key, raw := range updates {
		if !allowedUpdates[key] {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			continue
		}
		if key == "status" && value == model.StatusCompleted && task.Status != model.StatusCompleted {
			task.CompletedAt = m.now().UTC().Format(time.RFC3339)
		}
		switch key {
		case "title":
			task.Title = value
		case "description":
			task.Description = value
		case "priority":
			task.Priority = value
		case "category":
			task.Category = value
		case "status":
			task.Status = value
		case "due_date":
			task.DueDate = parseDueDate(value)
		case "wellness_impact":
			task.WellnessImpact = value
		}
	}
	task.UpdatedAt = m.now().UTC().Format(time.RFC3339)

	if err := m.mem.UpdateTask(ctx, task); err != nil {
		m.log.Error().Err(err).Str("task_id", taskID).Msg("task update failed")
		return UpdateResult{Error: err.Error()}
	}

	res := UpdateResult{Success: true, Task: &task}
	if s, ok := updates["status"].(string); ok && s == model.StatusCompleted {
		res.Celebration = celebration(task)
	}
	return res
}

// Delete removes a task. A missing id reports failure, never a crash.
func (m *Manager) Delete(ctx context.Context, taskID string) bool {
	if err := m.mem.DeleteTask(ctx, taskID); err != nil {
		m.log.Warn().Err(err).Str("task_id", taskID).Msg("task delete failed")
		return false
	}
	return true
}

// GetAnalytics summarizes tasks created in the last `days` days.
func (m *Manager) GetAnalytics(ctx context.Context, days int) Analytics {
	if days <= 0 {
		days = 30
	}
	period := fmt.Sprintf("Last %d days", days)

	all, err := m.mem.Tasks(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("task analytics read failed")
		return Analytics{Period: period, Error: err.Error()}
	}

	start := m.now().UTC().AddDate(0, 0, -days)
	var recent []model.Task
	for _, t := range all {
		created, err := parseISO(t.CreatedAt)
		if err != nil || created.Before(start) {
			continue
		}
		recent = append(recent, t)
	}
	if len(recent) == 0 {
		return Analytics{Period: period, Message: "No tasks found for this period"}
	}

	var completed []model.Task
	categories := map[string]int{}
	priorities := map[string]int{}
	impacts := map[string]int{}
	for _, t := range recent {
		if t.Status == model.StatusCompleted {
			completed = append(completed, t)
		}
		categories[t.Category]++
		priorities[t.Priority]++
		impacts[t.WellnessImpact]++
	}
	rate := float64(len(completed)) / float64(len(recent))

	return Analytics{
		Period:                  period,
		TotalTasks:              len(recent),
		CompletedTasks:          len(completed),
		CompletionRate:          rate,
		CategoryBreakdown:       categories,
		PriorityBreakdown:       priorities,
		WellnessImpactBreakdown: impacts,
		Insights:                taskInsights(recent, completed, categories, rate),
		Recommendations:         taskRecommendations(recent, categories, rate),
	}
}

// Upcoming returns pending tasks due within the next `days` days, annotated
// with days_until_due and sorted by due date.
func (m *Manager) Upcoming(ctx context.Context, days int) []model.Task {
	if days <= 0 {
		days = 7
	}
	now := m.now().UTC()
	horizon := now.AddDate(0, 0, days)

	pending := m.List(ctx, model.StatusPending, "")
	var out []model.Task
	for _, t := range pending {
		if t.DueDate == "" {
			continue
		}
		due, err := parseISO(t.DueDate)
		if err != nil || due.After(horizon) {
			continue
		}
		daysUntil := int(due.Sub(now).Hours() / 24)
		t.DaysUntilDue = &daysUntil
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out
}

// SuggestDaily proposes wellness activities for the day, prioritized by the
// user's reported mood when given.
func (m *Manager) SuggestDaily(userContext map[string]interface{}) DailySuggestions {
	suggestions := map[string][]string{
		"self_care": {
			"Take 5 deep breaths mindfully",
			"Write down 3 things you're grateful for",
			"Do something kind for yourself",
		},
		"movement": {
			"Take a 10-minute walk",
			"Do gentle stretches",
			"Dance to your favorite song",
		},
		"connection": {
			"Text a friend to check in",
			"Call a family member",
			"Smile at a stranger",
		},
		"mindfulness": {
			"Practice 5 minutes of meditation",
			"Eat one meal mindfully",
			"Notice 5 things you can see, 4 you can hear, 3 you can touch",
		},
		"creativity": {
			"Doodle or draw for 10 minutes",
			"Write in a journal",
			"Try a new recipe",
		},
	}

	if userContext != nil {
		if mood, ok := userContext["mood"].(string); ok {
			switch mood {
			case "stressed", "anxious":
				suggestions["priority"] = append(append([]string{}, suggestions["mindfulness"]...), suggestions["self_care"]...)
			case "sad", "lonely":
				suggestions["priority"] = append(append([]string{}, suggestions["connection"]...), suggestions["movement"]...)
			case "bored", "restless":
				suggestions["priority"] = append(append([]string{}, suggestions["creativity"]...), suggestions["movement"]...)
			}
		}
	}

	return DailySuggestions{
		Date:        m.now().UTC().Format("2006-01-02"),
		Suggestions: suggestions,
		Tip:         "Pick just 1-2 activities that feel good to you today. Small actions create big changes!",
	}
}

// parseISO accepts RFC3339 with either a Z or numeric offset.
func parseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
