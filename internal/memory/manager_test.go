package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

func newTestManager(t *testing.T) (*Manager, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	m := NewManager(context.Background(), fs, NewConversationBuffer(2000), zerolog.Nop())
	return m, fs
}

func TestSaveReflectionDefaultsCategory(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	res := m.SaveReflection(ctx, "felt calm after the walk", "")
	require.True(t, res.Success)
	require.NotEmpty(t, res.ID)
	require.NotEmpty(t, res.Timestamp)

	recs, err := fs.Get(ctx, model.CollectionReflections, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "general", recs[0].Metadata["category"])
	assert.Equal(t, model.TypeReflection, recs[0].Metadata["type"])
}

func TestProfileUpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	p := model.Profile{"name": "Alex", "pets": []interface{}{"Bruno"}}
	res1 := m.UpdateUserProfile(ctx, p)
	require.True(t, res1.Updated)
	res2 := m.UpdateUserProfile(ctx, p)
	require.True(t, res2.Updated)

	n, err := fs.Count(ctx, model.CollectionUserProfile)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "upsert must never create a second profile record")

	got := m.GetUserProfile(ctx)
	require.True(t, got.Exists)
	assert.Equal(t, "Alex", got.Profile["name"])
}

func TestGetUserProfileAbsent(t *testing.T) {
	m, _ := newTestManager(t)

	got := m.GetUserProfile(context.Background())
	assert.False(t, got.Exists)
	assert.NotNil(t, got.Profile)
	assert.Empty(t, got.Profile)
}

func TestGetUserMemoryCategoryReadsTopLevelField(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	m.UpdateUserProfile(ctx, model.Profile{
		"pets": []interface{}{"Bruno", "Whiskers"},
		"name": "Alex",
	})

	assert.ElementsMatch(t, []string{"Bruno", "Whiskers"}, m.GetUserMemoryCategory(ctx, "pets"))
	assert.Empty(t, m.GetUserMemoryCategory(ctx, "support_preferences"))
	assert.Empty(t, m.GetUserMemoryCategory(ctx, "name"), "scalar field is not a memory list")
}

func TestGetRelevantMemoriesGlobalRanking(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	require.True(t, m.SaveReflection(ctx, "exam stress reflection", "school").Success)
	require.True(t, m.RememberImportant(ctx, "exam on friday", "high").Success)
	require.True(t, m.UpdateUserProfile(ctx, model.Profile{"name": "Alex"}).Updated)

	// distances cross collection boundaries: profile closest, reflection farthest
	recs, _ := fs.Get(ctx, model.CollectionReflections, nil, nil)
	fs.distances[recs[0].ID] = 0.9
	recs, _ = fs.Get(ctx, model.CollectionImportantMemories, nil, nil)
	fs.distances[recs[0].ID] = 0.5
	fs.distances[model.ProfileID] = 0.2

	hits := m.GetRelevantMemories(ctx, "exams", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, 0.2, hits[0].Distance)
	assert.Equal(t, model.CollectionUserProfile, hits[0].Collection)
	assert.Equal(t, 0.5, hits[1].Distance)
	assert.Equal(t, model.CollectionImportantMemories, hits[1].Collection)
}

func TestGetRelevantMemoriesSkipsFailingCollection(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	require.True(t, m.SaveReflection(ctx, "a calm day", "general").Success)
	fs.failAll = true

	hits := m.GetRelevantMemories(ctx, "calm", 5)
	assert.Empty(t, hits)
}

func TestGetUserReflectionsNewestFirstWithCategoryFilter(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	// fixed timestamps so ordering is deterministic
	for i, tc := range []struct{ content, category, ts string }{
		{"oldest", "school", "2026-08-01T10:00:00Z"},
		{"middle", "work", "2026-08-02T10:00:00Z"},
		{"newest", "school", "2026-08-03T10:00:00Z"},
	} {
		err := fs.Add(ctx, model.CollectionReflections, []vecstore.Record{{
			ID:       tc.ts, // unique per entry
			Document: tc.content,
			Metadata: map[string]interface{}{
				"type": model.TypeReflection, "category": tc.category, "timestamp": tc.ts,
			},
		}})
		require.NoError(t, err, "seed %d", i)
	}

	all := m.GetUserReflections(ctx, "", 10)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Content)
	assert.Equal(t, "oldest", all[2].Content)

	school := m.GetUserReflections(ctx, "school", 10)
	require.Len(t, school, 2)
	assert.Equal(t, "newest", school[0].Content)
}

func TestMemoryStatsCountFailsIndependently(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	require.True(t, m.SaveReflection(ctx, "note", "general").Success)
	require.True(t, m.SaveJournalEntry(ctx, "u1", "dear diary").Success)
	fs.failCount[model.CollectionJournals] = true

	st := m.GetMemoryStats(ctx)
	assert.Equal(t, 1, st.LongTerm[model.CollectionReflections])
	assert.Equal(t, 0, st.LongTerm[model.CollectionJournals], "failed count degrades to zero")
	assert.Equal(t, 2000, st.ShortTerm.MaxTokenLimit)
}

func TestJournalLatestByDate(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	for _, e := range []model.JournalEntry{
		{UserID: "u1", Date: "2026-08-01T08:00:00Z", Text: "first"},
		{UserID: "u1", Date: "2026-08-05T08:00:00Z", Text: "latest"},
		{UserID: "u2", Date: "2026-08-09T08:00:00Z", Text: "other user"},
	} {
		doc, _ := json.Marshal(e)
		require.NoError(t, fs.Add(ctx, model.CollectionJournals, []vecstore.Record{{
			ID:       e.UserID + e.Date,
			Document: string(doc),
			Metadata: map[string]interface{}{"type": model.TypeJournalEntry, "userId": e.UserID, "date": e.Date},
		}}))
	}

	res := m.GetLatestJournalEntry(ctx, "u1")
	require.True(t, res.Success)
	assert.Equal(t, "latest", res.Entry.Text)
	assert.Equal(t, "u12026-08-05T08:00:00Z", res.Entry.ID, "record id backfills a missing document id")

	saved := m.SaveJournalEntry(ctx, "u4", "fresh entry")
	require.True(t, saved.Success)
	fresh := m.GetLatestJournalEntry(ctx, "u4")
	require.True(t, fresh.Success)
	assert.Equal(t, saved.ID, fresh.Entry.ID)

	none := m.GetLatestJournalEntry(ctx, "u3")
	assert.False(t, none.Success)
}

func TestMoodEntriesSkipCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	for i := 0; i < 4; i++ {
		e := model.MoodEntry{MoodValue: 5 + i, MoodLabel: "okay", Timestamp: nowISO()}
		require.True(t, m.SaveMoodEntry(ctx, e).Success)
	}
	require.NoError(t, fs.Add(ctx, model.CollectionMoodData, []vecstore.Record{{
		ID:       "corrupt",
		Document: "{not json",
		Metadata: map[string]interface{}{"type": model.TypeMoodEntry},
	}}))

	entries, err := m.MoodEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "corrupt record is skipped, rest returned")
}

func TestTaskRoundTripAndTypeGuard(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	require.True(t, m.RememberImportant(ctx, "not a task", "high").Success)
	task := model.Task{
		ID: "t1", Title: "evening walk", Priority: model.PriorityMedium,
		Category: "physical_health", Status: model.StatusPending, CreatedAt: nowISO(),
	}
	require.True(t, m.SaveTask(ctx, task).Success)

	tasks, err := m.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "free-form memories must not decode as tasks")
	assert.Equal(t, "evening walk", tasks[0].Title)

	got, err := m.Task(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	require.NoError(t, m.DeleteTask(ctx, "t1"))
	err = m.DeleteTask(ctx, "t1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSOSRequestStoredActive(t *testing.T) {
	ctx := context.Background()
	m, fs := newTestManager(t)

	res := m.SaveSOSRequest(ctx, model.SOSRequest{Content: "need help now", Urgency: "high"})
	require.True(t, res.Success)

	recs, err := fs.Get(ctx, model.CollectionSOSRequests, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "active", recs[0].Metadata["status"])
	assert.Equal(t, "high", recs[0].Metadata["urgency"])
}
