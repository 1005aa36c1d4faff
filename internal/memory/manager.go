package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/vecstore"
)

// SaveResult reports the outcome of a write operation. Failures are reported
// in-band; manager operations never panic or propagate storage errors.
type SaveResult struct {
	Success   bool   `json:"success"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ProfileUpdateResult reports the outcome of a profile upsert.
type ProfileUpdateResult struct {
	Updated   bool   `json:"updated"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ProfileResult is the stored profile, or Exists=false if never created.
type ProfileResult struct {
	Exists   bool                   `json:"exists"`
	Profile  model.Profile          `json:"profile"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// ShortTermStats describes the conversation buffer.
type ShortTermStats struct {
	MessageCount  int `json:"message_count"`
	MaxTokenLimit int `json:"max_token_limit"`
}

// Stats is the combined short-term and per-collection view of stored memory.
type Stats struct {
	ShortTerm ShortTermStats `json:"short_term"`
	LongTerm  map[string]int `json:"long_term"`
}

// JournalResult is a journal lookup outcome.
type JournalResult struct {
	Success bool                `json:"success"`
	Entry   *model.JournalEntry `json:"entry,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Manager owns all persisted collections. No other component writes to the
// store directly; mood tracking and task management persist through it.
type Manager struct {
	store vecstore.Store
	buf   *ConversationBuffer
	log   zerolog.Logger

	// serializes read-merge-write profile cycles so concurrent updates
	// cannot lose list-field contributions
	profileMu sync.Mutex
}

var ownedCollections = []string{
	model.CollectionReflections,
	model.CollectionImportantMemories,
	model.CollectionMoodData,
	model.CollectionSOSRequests,
	model.CollectionUserProfile,
	model.CollectionJournals,
}

// NewManager wires the manager over a collection store and a conversation
// buffer, creating the owned collections if absent.
func NewManager(ctx context.Context, store vecstore.Store, buf *ConversationBuffer, log zerolog.Logger) *Manager {
	m := &Manager{store: store, buf: buf, log: log.With().Str("component", "memory").Logger()}
	for _, name := range ownedCollections {
		if err := store.EnsureCollection(ctx, name); err != nil {
			m.log.Warn().Err(err).Str("collection", name).Msg("ensure collection failed")
		}
	}
	return m
}

// Buffer returns the short-term conversation buffer.
func (m *Manager) Buffer() *ConversationBuffer { return m.buf }

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// SaveReflection stores a user reflection under the given category
// ("general" when empty).
func (m *Manager) SaveReflection(ctx context.Context, content, category string) SaveResult {
	if category == "" {
		category = "general"
	}
	id := uuid.NewString()
	ts := nowISO()
	err := m.store.Add(ctx, model.CollectionReflections, []vecstore.Record{{
		ID:       id,
		Document: content,
		Metadata: map[string]interface{}{
			"type":      model.TypeReflection,
			"category":  category,
			"timestamp": ts,
		},
	}})
	if err != nil {
		m.log.Error().Err(err).Msg("save reflection failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: id, Timestamp: ts}
}

// RememberImportant stores a free-form important memory
// ("medium" importance when empty).
func (m *Manager) RememberImportant(ctx context.Context, content, importance string) SaveResult {
	if importance == "" {
		importance = "medium"
	}
	id := uuid.NewString()
	ts := nowISO()
	err := m.store.Add(ctx, model.CollectionImportantMemories, []vecstore.Record{{
		ID:       id,
		Document: content,
		Metadata: map[string]interface{}{
			"type":       model.TypeImportantMemory,
			"importance": importance,
			"timestamp":  ts,
		},
	}})
	if err != nil {
		m.log.Error().Err(err).Msg("remember important failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: id, Timestamp: ts}
}

// SaveSOSRequest logs a crisis support request for later follow-up.
func (m *Manager) SaveSOSRequest(ctx context.Context, req model.SOSRequest) SaveResult {
	if req.Timestamp == "" {
		req.Timestamp = nowISO()
	}
	doc, err := json.Marshal(req)
	if err != nil {
		return SaveResult{Error: err.Error()}
	}
	id := uuid.NewString()
	err = m.store.Add(ctx, model.CollectionSOSRequests, []vecstore.Record{{
		ID:       id,
		Document: string(doc),
		Metadata: map[string]interface{}{
			"type":      model.TypeSOSRequest,
			"urgency":   req.Urgency,
			"timestamp": req.Timestamp,
			"status":    "active",
		},
	}})
	if err != nil {
		m.log.Error().Err(err).Msg("save sos request failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: id, Timestamp: req.Timestamp}
}

// UpdateUserProfile upserts the single canonical profile document under the
// sentinel id. On presence the record is overwritten in place with one update
// call; a second profile record is never created.
func (m *Manager) UpdateUserProfile(ctx context.Context, profile model.Profile) ProfileUpdateResult {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()
	return m.updateUserProfileLocked(ctx, profile)
}

func (m *Manager) updateUserProfileLocked(ctx context.Context, profile model.Profile) ProfileUpdateResult {
	ts := nowISO()
	doc, err := json.Marshal(profile)
	if err != nil {
		return ProfileUpdateResult{Error: err.Error()}
	}
	rec := vecstore.Record{
		ID:       model.ProfileID,
		Document: string(doc),
		Metadata: map[string]interface{}{
			"type":         model.TypeUserProfile,
			"last_updated": ts,
		},
	}

	existing, err := m.store.Get(ctx, model.CollectionUserProfile, []string{model.ProfileID}, nil)
	if err != nil {
		m.log.Error().Err(err).Msg("profile existence check failed")
		return ProfileUpdateResult{Error: err.Error()}
	}
	if len(existing) == 0 {
		err = m.store.Add(ctx, model.CollectionUserProfile, []vecstore.Record{rec})
	} else {
		err = m.store.Update(ctx, model.CollectionUserProfile, []vecstore.Record{rec})
	}
	if err != nil {
		m.log.Error().Err(err).Msg("profile upsert failed")
		return ProfileUpdateResult{Error: err.Error()}
	}
	return ProfileUpdateResult{Updated: true, Timestamp: ts}
}

// MergeIntoProfile applies a fact delta to the stored profile and persists
// the full merged document, all under the profile write lock so concurrent
// merges cannot lose list contributions. merge is supplied by the caller
// (the conversation layer owns merge semantics).
func (m *Manager) MergeIntoProfile(ctx context.Context, delta model.FactDelta, merge func(existing model.Profile, delta model.FactDelta) model.Profile) ProfileUpdateResult {
	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	existing := model.Profile{}
	if res := m.getUserProfile(ctx); res.Exists {
		existing = res.Profile
	}
	return m.updateUserProfileLocked(ctx, merge(existing, delta))
}

// GetUserProfile returns the stored profile, or Exists=false if never created.
func (m *Manager) GetUserProfile(ctx context.Context) ProfileResult {
	return m.getUserProfile(ctx)
}

func (m *Manager) getUserProfile(ctx context.Context) ProfileResult {
	recs, err := m.store.Get(ctx, model.CollectionUserProfile, []string{model.ProfileID}, nil)
	if err != nil {
		m.log.Error().Err(err).Msg("get profile failed")
		return ProfileResult{Profile: model.Profile{}, Error: err.Error()}
	}
	if len(recs) == 0 {
		return ProfileResult{Profile: model.Profile{}}
	}
	var p model.Profile
	if err := json.Unmarshal([]byte(recs[0].Document), &p); err != nil {
		m.log.Warn().Err(err).Msg("stored profile document is corrupt")
		return ProfileResult{Profile: model.Profile{}, Error: err.Error()}
	}
	return ProfileResult{Exists: true, Profile: p, Metadata: recs[0].Metadata}
}

// GetUserMemoryCategory returns the list stored under the given top-level
// profile field, or an empty list when the field is absent or not a list.
func (m *Manager) GetUserMemoryCategory(ctx context.Context, category string) []string {
	res := m.getUserProfile(ctx)
	if !res.Exists {
		return []string{}
	}
	raw, ok := res.Profile[category]
	if !ok {
		return []string{}
	}
	items, ok := raw.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// relevance search fans out to these collections, up to 3 hits each
var searchCollections = []string{
	model.CollectionReflections,
	model.CollectionImportantMemories,
	model.CollectionUserProfile,
}

// GetRelevantMemories runs a cross-collection similarity search: every hit
// competes on distance alone regardless of source collection. A failing
// collection is skipped; ties keep per-collection order.
func (m *Manager) GetRelevantMemories(ctx context.Context, query string, n int) []model.MemoryHit {
	if n <= 0 {
		n = 5
	}
	var hits []model.MemoryHit
	for _, coll := range searchCollections {
		qh, err := m.store.Query(ctx, coll, query, 3)
		if err != nil {
			m.log.Warn().Err(err).Str("collection", coll).Msg("relevance query failed; skipping collection")
			continue
		}
		for _, h := range qh {
			hits = append(hits, model.MemoryHit{
				Content:    h.Document,
				Metadata:   h.Metadata,
				Collection: coll,
				Distance:   h.Distance,
			})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}

// GetUserReflections lists stored reflections newest first, optionally
// filtered by exact category. Read failures degrade to an empty list.
func (m *Manager) GetUserReflections(ctx context.Context, category string, limit int) []model.Reflection {
	if limit <= 0 {
		limit = 10
	}
	where := map[string]interface{}{"type": model.TypeReflection}
	if category != "" {
		where["category"] = category
	}
	recs, err := m.store.Get(ctx, model.CollectionReflections, nil, where)
	if err != nil {
		m.log.Error().Err(err).Msg("get reflections failed")
		return []model.Reflection{}
	}

	out := make([]model.Reflection, 0, len(recs))
	for _, r := range recs {
		refl := model.Reflection{ID: r.ID, Content: r.Document, Type: model.TypeReflection}
		if c, ok := r.Metadata["category"].(string); ok {
			refl.Category = c
		}
		if ts, ok := r.Metadata["timestamp"].(string); ok {
			refl.Timestamp = ts
		}
		out = append(out, refl)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetMemoryStats reports the buffer state and a per-collection record count.
// A collection whose count fails reports 0 without aborting the stats call.
func (m *Manager) GetMemoryStats(ctx context.Context) Stats {
	st := Stats{LongTerm: make(map[string]int, len(ownedCollections))}
	if m.buf != nil {
		st.ShortTerm = ShortTermStats{
			MessageCount:  m.buf.MessageCount(),
			MaxTokenLimit: m.buf.MaxTokenLimit(),
		}
	}
	for _, name := range ownedCollections {
		n, err := m.store.Count(ctx, name)
		if err != nil {
			m.log.Warn().Err(err).Str("collection", name).Msg("count failed; reporting zero")
			n = 0
		}
		st.LongTerm[name] = n
	}
	return st
}

// SaveJournalEntry stores a dated journal text for the given user.
func (m *Manager) SaveJournalEntry(ctx context.Context, userID, text string) SaveResult {
	ts := nowISO()
	id := uuid.NewString()
	entry := model.JournalEntry{ID: id, UserID: userID, Date: ts, Text: text}
	doc, err := json.Marshal(entry)
	if err != nil {
		return SaveResult{Error: err.Error()}
	}
	err = m.store.Add(ctx, model.CollectionJournals, []vecstore.Record{{
		ID:       id,
		Document: string(doc),
		Metadata: map[string]interface{}{
			"type":   model.TypeJournalEntry,
			"userId": userID,
			"date":   ts,
		},
	}})
	if err != nil {
		m.log.Error().Err(err).Msg("save journal entry failed")
		return SaveResult{Error: err.Error()}
	}
	return SaveResult{Success: true, ID: id, Timestamp: ts}
}

// GetLatestJournalEntry returns the newest journal entry for the user,
// or Success=false when none exist.
func (m *Manager) GetLatestJournalEntry(ctx context.Context, userID string) JournalResult {
	recs, err := m.store.Get(ctx, model.CollectionJournals, nil, map[string]interface{}{
		"type":   model.TypeJournalEntry,
		"userId": userID,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("get journal entries failed")
		return JournalResult{Error: err.Error()}
	}

	var latest *model.JournalEntry
	for _, r := range recs {
		var e model.JournalEntry
		if err := json.Unmarshal([]byte(r.Document), &e); err != nil {
			m.log.Warn().Err(err).Str("id", r.ID).Msg("corrupt journal entry skipped")
			continue
		}
		if e.ID == "" {
			e.ID = r.ID
		}
		if latest == nil || e.Date > latest.Date {
			cp := e
			latest = &cp
		}
	}
	if latest == nil {
		return JournalResult{Error: "no journal entries found"}
	}
	return JournalResult{Success: true, Entry: latest}
}
