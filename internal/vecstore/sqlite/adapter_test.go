package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// stubEmbedder maps exact document strings to fixed vectors so distance
// ordering in tests is deterministic.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestStore(t *testing.T, emb *stubEmbedder) *SqliteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	var e *stubEmbedder
	if emb != nil {
		e = emb
	} else {
		e = &stubEmbedder{}
	}
	st, err := New(path, e, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestAddRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	rec := vecstore.Record{ID: "r1", Document: "first"}
	require.NoError(t, st.Add(ctx, "user_reflections", []vecstore.Record{rec}))

	err := st.Add(ctx, "user_reflections", []vecstore.Record{rec})
	require.ErrorIs(t, err, model.ErrDuplicateID)

	n, err := st.Count(ctx, "user_reflections")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdateMissingID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	require.NoError(t, st.EnsureCollection(ctx, "user_profile"))

	err := st.Update(ctx, "user_profile", []vecstore.Record{{ID: "absent", Document: "x"}})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateOverwritesInPlace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	require.NoError(t, st.Add(ctx, "user_profile", []vecstore.Record{{
		ID:       "user_profile_main",
		Document: "old profile",
		Metadata: map[string]interface{}{"name": "Ana"},
	}}))
	require.NoError(t, st.Update(ctx, "user_profile", []vecstore.Record{{
		ID:       "user_profile_main",
		Document: "new profile",
		Metadata: map[string]interface{}{"name": "Ana", "pets": "Bruno"},
	}}))

	recs, err := st.Get(ctx, "user_profile", []string{"user_profile_main"}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "new profile", recs[0].Document)
	assert.Equal(t, "Bruno", recs[0].Metadata["pets"])

	n, err := st.Count(ctx, "user_profile")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetWhereFilterIsExactMatchAND(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	recs := []vecstore.Record{
		{ID: "a", Document: "walk", Metadata: map[string]interface{}{"type": "task", "status": "pending"}},
		{ID: "b", Document: "read", Metadata: map[string]interface{}{"type": "task", "status": "completed"}},
		{ID: "c", Document: "note", Metadata: map[string]interface{}{"type": "memory"}},
	}
	require.NoError(t, st.Add(ctx, "important_memories", recs))

	got, err := st.Get(ctx, "important_memories", nil, map[string]interface{}{
		"type": "task", "status": "pending",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	all, err := st.Get(ctx, "important_memories", nil, map[string]interface{}{"type": "task"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMetadataNullStripped(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	require.NoError(t, st.Add(ctx, "mood_data", []vecstore.Record{{
		ID:       "m1",
		Document: "mood: great",
		Metadata: map[string]interface{}{"mood_value": 8, "note": nil},
	}}))

	recs, err := st.Get(ctx, "mood_data", []string{"m1"}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, present := recs[0].Metadata["note"]
	assert.False(t, present, "nil metadata values must be dropped, not stored as null")
}

func TestQueryRanksByAscendingDistance(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{vectors: map[string][]float32{
		"anxiety before exams": {1, 0, 0},
		"close match":          {0.9, 0.1, 0},
		"far match":            {0, 1, 0},
		"middle match":         {0.5, 0.5, 0},
	}}
	st := newTestStore(t, emb)

	require.NoError(t, st.Add(ctx, "user_reflections", []vecstore.Record{
		{ID: "far", Document: "far match"},
		{ID: "close", Document: "close match"},
		{ID: "mid", Document: "middle match"},
	}))

	hits, err := st.Query(ctx, "user_reflections", "anxiety before exams", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close", hits[0].ID)
	assert.Equal(t, "mid", hits[1].ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestDeleteAbsentID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)
	require.NoError(t, st.EnsureCollection(ctx, "sos_requests"))

	err := st.Delete(ctx, "sos_requests", []string{"nope"})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestCountPerCollection(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t, nil)

	require.NoError(t, st.Add(ctx, "journals", []vecstore.Record{
		{ID: "j1", Document: "day one"},
		{ID: "j2", Document: "day two"},
	}))
	require.NoError(t, st.Add(ctx, "mood_data", []vecstore.Record{
		{ID: "m1", Document: "mood: good"},
	}))

	n, err := st.Count(ctx, "journals")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = st.Count(ctx, "mood_data")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
