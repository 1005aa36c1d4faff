package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// Tasks share the important_memories collection with free-form memories and
// are disambiguated by metadata type "task". The discriminator is decoded
// here, at the storage boundary; callers only ever see typed Tasks.

func taskRecord(t model.Task) (vecstore.Record, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return vecstore.Record{}, err
	}
	return vecstore.Record{
		ID:       t.ID,
		Document: string(doc),
		Metadata: map[string]interface{}{
			"type":     model.TypeTask,
			"status":   t.Status,
			"priority": t.Priority,
			"category": t.Category,
		},
	}, nil
}

// SaveTask persists a new task.
func (m *Manager) SaveTask(ctx context.Context, t model.Task) SaveResult {
	rec, err := taskRecord(t)
	if err != nil {
		return SaveResult{Error: err.Error()}
	}
	if err := m.store.Add(ctx, model.CollectionImportantMemories, []vecstore.Record{rec}); err != nil {
		m.log.Error().Err(err).Msg("save task failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: t.ID, Timestamp: t.CreatedAt}
}

// UpdateTask overwrites a stored task in place.
func (m *Manager) UpdateTask(ctx context.Context, t model.Task) error {
	rec, err := taskRecord(t)
	if err != nil {
		return err
	}
	return m.store.Update(ctx, model.CollectionImportantMemories, []vecstore.Record{rec})
}

// DeleteTask removes a task by id. A missing id returns model.ErrNotFound.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	// guard against deleting a free-form memory through the task path
	if _, err := m.Task(ctx, id); err != nil {
		return err
	}
	return m.store.Delete(ctx, model.CollectionImportantMemories, []string{id})
}

// Task loads one task by id.
func (m *Manager) Task(ctx context.Context, id string) (model.Task, error) {
	recs, err := m.store.Get(ctx, model.CollectionImportantMemories, []string{id}, map[string]interface{}{
		"type": model.TypeTask,
	})
	if err != nil {
		return model.Task{}, err
	}
	if len(recs) == 0 {
		return model.Task{}, fmt.Errorf("%w: task %s", model.ErrNotFound, id)
	}
	var t model.Task
	if err := json.Unmarshal([]byte(recs[0].Document), &t); err != nil {
		return model.Task{}, fmt.Errorf("decode task %s: %w", id, err)
	}
	return t, nil
}

// Tasks returns all stored tasks. Corrupt documents are skipped and logged.
func (m *Manager) Tasks(ctx context.Context) ([]model.Task, error) {
	recs, err := m.store.Get(ctx, model.CollectionImportantMemories, nil, map[string]interface{}{
		"type": model.TypeTask,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(recs))
	for _, r := range recs {
		var t model.Task
		if err := json.Unmarshal([]byte(r.Document), &t); err != nil {
			m.log.Warn().Err(err).Str("id", r.ID).Msg("corrupt task skipped")
			continue
		}
		if t.ID == "" {
			t.ID = r.ID
		}
		out = append(out, t)
	}
	return out, nil
}
