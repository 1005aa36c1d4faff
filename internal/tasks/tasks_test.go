package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore/sqlite"
)

type unitEmbedder struct{}

func (unitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}

func newTestTaskManager(t *testing.T) *Manager {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "tasks.db"), unitEmbedder{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mem := memory.NewManager(context.Background(), st, memory.NewConversationBuffer(2000), zerolog.Nop())
	return NewManager(mem, zerolog.Nop())
}

func TestAddTaskDefaults(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	res := m.Add(ctx, "Morning run in the park", "", "not-a-priority", "", "not-a-category", "")
	require.True(t, res.Success)
	assert.Equal(t, model.PriorityMedium, res.Task.Priority)
	assert.Equal(t, "personal", res.Task.Category)
	assert.Equal(t, model.ImpactNeutral, res.Task.WellnessImpact)
	assert.Equal(t, model.StatusPending, res.Task.Status)
	assert.Contains(t, res.Task.Tags, "exercise")
	assert.NotEmpty(t, res.Motivation)
}

func TestAddTaskRequiresTitle(t *testing.T) {
	m := newTestTaskManager(t)
	res := m.Add(context.Background(), "   ", "", "", "", "", "")
	assert.False(t, res.Success)
}

func TestAddTaskParsesDueDateFormats(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	for _, in := range []string{"2026-09-15", "2026-09-15T10:00:00Z", "09/15/2026"} {
		res := m.Add(ctx, "check in with therapist", "", "", in, "health", "")
		require.True(t, res.Success, "input %s", in)
		assert.Contains(t, res.Task.DueDate, "2026-09-15", "input %s", in)
	}

	res := m.Add(ctx, "no due date", "", "", "someday", "", "")
	require.True(t, res.Success)
	assert.Empty(t, res.Task.DueDate, "unparseable due date is dropped")
}

func TestListSortsByPriorityThenDueDate(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	require.True(t, m.Add(ctx, "low prio", "", "low", "2026-09-01", "", "").Success)
	require.True(t, m.Add(ctx, "urgent late", "", "urgent", "2026-09-20", "", "").Success)
	require.True(t, m.Add(ctx, "urgent soon", "", "urgent", "2026-09-02", "", "").Success)
	require.True(t, m.Add(ctx, "medium no due", "", "medium", "", "", "").Success)

	got := m.List(ctx, "", "")
	require.Len(t, got, 4)
	assert.Equal(t, "urgent soon", got[0].Title)
	assert.Equal(t, "urgent late", got[1].Title)
	assert.Equal(t, "medium no due", got[2].Title)
	assert.Equal(t, "low prio", got[3].Title)
}

func TestUpdateCompletionStampsOnce(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	added := m.Add(ctx, "evening stretch", "", "", "", "exercise", "")
	require.True(t, added.Success)
	id := added.Task.ID

	first := m.Update(ctx, id, map[string]interface{}{"status": "completed"})
	require.True(t, first.Success)
	stamp := first.Task.CompletedAt
	require.NotEmpty(t, stamp)
	assert.NotEmpty(t, first.Celebration)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	second := m.Update(ctx, id, map[string]interface{}{"status": "completed"})
	require.True(t, second.Success)
	assert.Equal(t, stamp, second.Task.CompletedAt, "re-completing must not re-stamp")
}

func TestUpdateAllowListIgnoresUnknownFields(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	added := m.Add(ctx, "write journal", "", "", "", "", "")
	require.True(t, added.Success)

	res := m.Update(ctx, added.Task.ID, map[string]interface{}{
		"title":        "write evening journal",
		"completed_at": "2020-01-01T00:00:00Z", // not allow-listed
		"id":           "hijack",
	})
	require.True(t, res.Success)
	assert.Equal(t, "write evening journal", res.Task.Title)
	assert.Empty(t, res.Task.CompletedAt)
	assert.Equal(t, added.Task.ID, res.Task.ID)
}

func TestUpdateMissingTask(t *testing.T) {
	m := newTestTaskManager(t)
	res := m.Update(context.Background(), "nope", map[string]interface{}{"title": "x"})
	assert.False(t, res.Success)
	assert.Equal(t, "Task not found", res.Error)
}

func TestDeleteMissingTaskReportsFailure(t *testing.T) {
	m := newTestTaskManager(t)
	assert.False(t, m.Delete(context.Background(), "ghost"))
}

func TestAnalyticsCompletionRate(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	a := m.Add(ctx, "task one", "", "", "", "self_care", "positive")
	require.True(t, a.Success)
	require.True(t, m.Add(ctx, "task two", "", "", "", "work", "").Success)
	require.True(t, m.Update(ctx, a.Task.ID, map[string]interface{}{"status": "completed"}).Success)

	stats := m.GetAnalytics(ctx, 30)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.InDelta(t, 0.5, stats.CompletionRate, 1e-9)
	assert.Equal(t, 1, stats.CategoryBreakdown["self_care"])
}

func TestUpcomingAnnotatesDaysUntilDue(t *testing.T) {
	ctx := context.Background()
	m := newTestTaskManager(t)

	soon := time.Now().UTC().AddDate(0, 0, 2).Format(time.RFC3339)
	far := time.Now().UTC().AddDate(0, 0, 30).Format(time.RFC3339)
	require.True(t, m.Add(ctx, "due soon", "", "", soon, "", "").Success)
	require.True(t, m.Add(ctx, "due far", "", "", far, "", "").Success)
	require.True(t, m.Add(ctx, "no due", "", "", "", "", "").Success)

	up := m.Upcoming(ctx, 7)
	require.Len(t, up, 1)
	assert.Equal(t, "due soon", up[0].Title)
	require.NotNil(t, up[0].DaysUntilDue)
	assert.Equal(t, 1, *up[0].DaysUntilDue)
}

func TestSuggestDailyMoodPriority(t *testing.T) {
	m := newTestTaskManager(t)

	s := m.SuggestDaily(map[string]interface{}{"mood": "anxious"})
	require.Contains(t, s.Suggestions, "priority")
	assert.Contains(t, s.Suggestions["priority"], "Practice 5 minutes of meditation")

	neutral := m.SuggestDaily(nil)
	_, hasPriority := neutral.Suggestions["priority"]
	assert.False(t, hasPriority)
}
