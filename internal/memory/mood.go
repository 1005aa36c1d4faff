package memory

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// SaveMoodEntry persists one mood observation. The full entry is the
// document; mood_value, timestamp and has_note are denormalized into
// metadata for filtering.
func (m *Manager) SaveMoodEntry(ctx context.Context, entry model.MoodEntry) SaveResult {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = nowISO()
	}
	doc, err := json.Marshal(entry)
	if err != nil {
		return SaveResult{Error: err.Error()}
	}
	err = m.store.Add(ctx, model.CollectionMoodData, []vecstore.Record{{
		ID:       entry.ID,
		Document: string(doc),
		Metadata: map[string]interface{}{
			"type":       model.TypeMoodEntry,
			"mood_value": entry.MoodValue,
			"timestamp":  entry.Timestamp,
			"has_note":   entry.Note != "",
		},
	}})
	if err != nil {
		m.log.Error().Err(err).Msg("save mood entry failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: entry.ID, Timestamp: entry.Timestamp}
}

// MoodEntries returns all stored mood observations. A record whose document
// fails to deserialize is skipped and logged; the rest are still returned.
func (m *Manager) MoodEntries(ctx context.Context) ([]model.MoodEntry, error) {
	recs, err := m.store.Get(ctx, model.CollectionMoodData, nil, map[string]interface{}{
		"type": model.TypeMoodEntry,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.MoodEntry, 0, len(recs))
	for _, r := range recs {
		var e model.MoodEntry
		if err := json.Unmarshal([]byte(r.Document), &e); err != nil {
			m.log.Warn().Err(err).Str("id", r.ID).Msg("corrupt mood entry skipped")
			continue
		}
		if e.ID == "" {
			e.ID = r.ID
		}
		out = append(out, e)
	}
	return out, nil
}
