package model

// Collection names owned by the long-term memory manager.
const (
	CollectionReflections       = "user_reflections"
	CollectionImportantMemories = "important_memories"
	CollectionMoodData          = "mood_data"
	CollectionSOSRequests       = "sos_requests"
	CollectionUserProfile       = "user_profile"
	CollectionJournals          = "journals"
)

// ProfileID is the sentinel id that guarantees at most one profile record.
const ProfileID = "user_profile_main"

// Record type discriminators stored in metadata under the "type" key.
const (
	TypeReflection      = "reflection"
	TypeImportantMemory = "important_memory"
	TypeMoodEntry       = "mood_entry"
	TypeSOSRequest      = "sos_request"
	TypeUserProfile     = "user_profile"
	TypeJournalEntry    = "journal_entry"
	TypeTask            = "task"
)

// FactDelta is the incremental set of profile fields extracted from a single
// user utterance. Values are either string or []string; it is never persisted
// directly and always flows through the profile merge engine.
type FactDelta map[string]interface{}

// Profile is the canonical user profile document. Scalar facts live at the top
// level; list-valued facts (pets, support_preferences, notes) are unordered
// fact sets.
type Profile map[string]interface{}

// MoodEntry is a single logged mood observation.
type MoodEntry struct {
	ID            string                 `json:"id"`
	MoodValue     int                    `json:"mood_value"`
	MoodLabel     string                 `json:"mood_label"`
	Note          string                 `json:"note,omitempty"`
	NoteSentiment *NoteSentiment         `json:"note_sentiment,omitempty"`
	Timestamp     string                 `json:"timestamp"`
	Context       map[string]interface{} `json:"context"`
}

// NoteSentiment carries opaque sentiment scores attached to a mood note.
type NoteSentiment struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Wellness impact values.
const (
	ImpactPositive    = "positive"
	ImpactNeutral     = "neutral"
	ImpactChallenging = "challenging"
)

// Task is a wellness-focused task stored in the important_memories collection
// and disambiguated from free-form memories by metadata type "task".
type Task struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Priority            string   `json:"priority"`
	Category            string   `json:"category"`
	WellnessImpact      string   `json:"wellness_impact"`
	Status              string   `json:"status"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
	DueDate             string   `json:"due_date,omitempty"`
	CompletedAt         string   `json:"completed_at,omitempty"`
	Tags                []string `json:"tags"`
	EstimatedEffort     string   `json:"estimated_effort,omitempty"`
	WellnessSuggestions []string `json:"wellness_suggestions,omitempty"`
	DaysUntilDue        *int     `json:"days_until_due,omitempty"`
}

// ImportantMemory is a free-form long-term memory saved by the user.
type ImportantMemory struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Importance string `json:"importance"`
	Timestamp  string `json:"timestamp"`
}

// Reflection is a saved user reflection.
type Reflection struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// JournalEntry is a dated journal text for a user.
type JournalEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Text   string `json:"text"`
}

// SOSRequest captures a crisis support request for tracking.
type SOSRequest struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Urgency   string `json:"urgency"`
	Location  string `json:"location"`
}

// MemoryHit is a relevance-ranked result from a cross-collection search.
// Lower distance means more similar.
type MemoryHit struct {
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Collection string                 `json:"collection"`
	Distance   float64                `json:"distance"`
}
