// Package mood logs mood observations and computes analytics over them.
// All persistence goes through the long-term memory manager.
package mood

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/reflective-ai/reflective-server/internal/memory"
	"github.com/reflective-ai/reflective-server/internal/model"
	"github.com/reflective-ai/reflective-server/internal/sentiment"
)

// 1-10 scale
var moodValues = map[string]int{
	"terrible":  1,
	"very_bad":  2,
	"bad":       3,
	"poor":      4,
	"okay":      5,
	"good":      6,
	"very_good": 7,
	"great":     8,
	"excellent": 9,
	"amazing":   10,
}

var valueMoods = func() map[int]string {
	m := make(map[int]string, len(moodValues))
	for k, v := range moodValues {
		m[v] = k
	}
	return m
}()

// ParseMoodValue converts a mood input (label, numeric string, or number) to
// the 1-10 scale. Floats truncate toward zero; anything outside 1..10 or
// unrecognized fails with model.ErrValidation.
func ParseMoodValue(mood interface{}) (int, error) {
	switch v := mood.(type) {
	case int:
		return boundMood(v)
	case float64:
		return boundMood(int(v))
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return boundMood(int(f))
		}
		if val, ok := moodValues[s]; ok {
			return val, nil
		}
		return 0, fmt.Errorf("%w: invalid mood value %q", model.ErrValidation, v)
	default:
		return 0, fmt.Errorf("%w: invalid mood value %v", model.ErrValidation, mood)
	}
}

func boundMood(v int) (int, error) {
	if v < 1 || v > 10 {
		return 0, fmt.Errorf("%w: mood value %d outside 1-10", model.ErrValidation, v)
	}
	return v, nil
}

// Insights accompany a logged mood entry.
type Insights struct {
	Level         string        `json:"level"`
	Suggestions   []string      `json:"suggestions"`
	Encouragement string        `json:"encouragement"`
	NoteAnalysis  *NoteAnalysis `json:"note_analysis,omitempty"`
}

// NoteAnalysis summarizes themes found in a mood note.
type NoteAnalysis struct {
	Themes           []string `json:"themes"`
	WordCount        int      `json:"word_count"`
	HasPositiveWords bool     `json:"has_positive_words"`
	HasNegativeWords bool     `json:"has_negative_words"`
}

// LogResult reports the outcome of a mood log.
type LogResult struct {
	Success   bool             `json:"success"`
	MoodEntry *model.MoodEntry `json:"mood_entry,omitempty"`
	Insights  *Insights        `json:"insights,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// DailySummary aggregates one day of entries.
type DailySummary struct {
	Date        string  `json:"date"`
	Entries     int     `json:"entries"`
	AverageMood float64 `json:"average_mood"`
	MinMood     int     `json:"min_mood"`
	MaxMood     int     `json:"max_mood"`
}

// Analytics is the aggregate view over a period.
type Analytics struct {
	Period           string         `json:"period"`
	TotalEntries     int            `json:"total_entries"`
	AverageMood      float64        `json:"average_mood,omitempty"`
	MoodTrend        string         `json:"mood_trend,omitempty"`
	MoodDistribution map[string]int `json:"mood_distribution,omitempty"`
	DailySummary     []DailySummary `json:"daily_summary,omitempty"`
	Insights         []string       `json:"insights,omitempty"`
	Recommendations  []string       `json:"recommendations,omitempty"`
	Message          string         `json:"message,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// Tracker logs and analyzes mood entries.
type Tracker struct {
	mem *memory.Manager
	log zerolog.Logger
	now func() time.Time
}

// NewTracker wires the tracker over the memory manager.
func NewTracker(mem *memory.Manager, log zerolog.Logger) *Tracker {
	return &Tracker{
		mem: mem,
		log: log.With().Str("component", "mood").Logger(),
		now: time.Now,
	}
}

// LogMood records one mood observation with an optional note and context.
func (t *Tracker) LogMood(ctx context.Context, mood interface{}, note string, moodContext map[string]interface{}) LogResult {
	value, err := ParseMoodValue(mood)
	if err != nil {
		return LogResult{Error: "Invalid mood value"}
	}
	if moodContext == nil {
		moodContext = map[string]interface{}{}
	}

	entry := model.MoodEntry{
		MoodValue: value,
		MoodLabel: valueMoods[value],
		Note:      note,
		Timestamp: t.now().UTC().Format(time.RFC3339),
		Context:   moodContext,
	}
	if note != "" {
		a := sentiment.Analyze(note)
		entry.NoteSentiment = &model.NoteSentiment{Polarity: a.Polarity, Subjectivity: a.Subjectivity}
	}

	res := t.mem.SaveMoodEntry(ctx, entry)
	if !res.Success {
		return LogResult{Error: res.Error}
	}
	entry.ID = res.ID

	ins := moodInsights(value, note)
	return LogResult{Success: true, MoodEntry: &entry, Insights: &ins, Timestamp: entry.Timestamp}
}

// GetAnalytics aggregates mood entries from the last `days` days.
// Storage failures degrade to an error field; corrupt or out-of-range
// entries are simply excluded.
func (t *Tracker) GetAnalytics(ctx context.Context, days int) Analytics {
	if days <= 0 {
		days = 7
	}
	period := fmt.Sprintf("Last %d days", days)

	end := t.now().UTC()
	start := end.AddDate(0, 0, -days)

	entries, err := t.entriesInRange(ctx, start, end)
	if err != nil {
		t.log.Error().Err(err).Msg("mood analytics read failed")
		return Analytics{Period: period, Error: err.Error()}
	}
	if len(entries) == 0 {
		return Analytics{Period: period, Message: "No mood entries found for this period"}
	}

	values := make([]int, len(entries))
	for i, e := range entries {
		values[i] = e.MoodValue
	}
	avg := mean(values)
	trend := moodTrend(values)

	return Analytics{
		Period:           period,
		TotalEntries:     len(entries),
		AverageMood:      avg,
		MoodTrend:        trend,
		MoodDistribution: distribution(values),
		DailySummary:     dailySummaries(entries),
		Insights:         analyticsInsights(values, avg, trend),
		Recommendations:  recommendations(avg, trend),
	}
}

// entriesInRange loads entries within [start, end], sorted by timestamp
// ascending. Entries with unparseable timestamps are skipped.
func (t *Tracker) entriesInRange(ctx context.Context, start, end time.Time) ([]model.MoodEntry, error) {
	all, err := t.mem.MoodEntries(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.MoodEntry
	for _, e := range all {
		ts, err := ParseTimestamp(e.Timestamp)
		if err != nil {
			t.log.Warn().Str("timestamp", e.Timestamp).Msg("unparseable mood timestamp skipped")
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// ParseTimestamp parses an ISO-8601 timestamp, tolerating a trailing Z.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999-07:00", strings.Replace(s, "Z", "+00:00", 1))
}

// moodTrend fits a least-squares line over the entry sequence.
func moodTrend(values []int) string {
	n := len(values)
	if n < 2 {
		return "insufficient_data"
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x, y := float64(i), float64(v)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	switch {
	case slope > 0.1:
		return "improving"
	case slope < -0.1:
		return "declining"
	default:
		return "stable"
	}
}

func mean(values []int) float64 {
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func stddev(values []int, avg float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := float64(v) - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func distribution(values []int) map[string]int {
	d := map[string]int{"low": 0, "moderate": 0, "high": 0}
	for _, v := range values {
		d[moodLevel(v)]++
	}
	return d
}

func moodLevel(value int) string {
	switch {
	case value <= 3:
		return "low"
	case value <= 6:
		return "moderate"
	default:
		return "high"
	}
}

func dailySummaries(entries []model.MoodEntry) []DailySummary {
	byDay := make(map[string][]int)
	var order []string
	for _, e := range entries {
		day := e.Timestamp
		if len(day) >= 10 {
			day = day[:10]
		}
		if _, seen := byDay[day]; !seen {
			order = append(order, day)
		}
		byDay[day] = append(byDay[day], e.MoodValue)
	}

	out := make([]DailySummary, 0, len(order))
	for _, day := range order {
		vals := byDay[day]
		minV, maxV := vals[0], vals[0]
		for _, v := range vals {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		out = append(out, DailySummary{
			Date:        day,
			Entries:     len(vals),
			AverageMood: mean(vals),
			MinMood:     minV,
			MaxMood:     maxV,
		})
	}
	return out
}

func analyticsInsights(values []int, avg float64, trend string) []string {
	var out []string
	switch {
	case avg >= 7:
		out = append(out, "Your overall mood has been quite positive recently!")
	case avg >= 5:
		out = append(out, "Your mood has been moderate - there's room for improvement.")
	default:
		out = append(out, "Your mood has been lower recently - consider additional support.")
	}

	switch trend {
	case "improving":
		out = append(out, "Great news! Your mood trend is improving over time.")
	case "declining":
		out = append(out, "Your mood seems to be declining - it might be worth exploring what's changed.")
	default:
		out = append(out, "Your mood has been relatively stable.")
	}

	if stddev(values, avg) > 2 {
		out = append(out, "Your mood varies quite a bit - tracking patterns might help identify triggers.")
	} else {
		out = append(out, "Your mood has been fairly consistent.")
	}
	return out
}

func recommendations(avg float64, trend string) []string {
	var out []string
	if avg < 5 {
		out = append(out,
			"Consider establishing a daily self-care routine",
			"Practice mindfulness or meditation",
			"Connect with supportive friends or family",
			"Consider speaking with a mental health professional",
		)
	}
	if trend == "declining" {
		out = append(out,
			"Reflect on recent changes in your life",
			"Ensure you're getting adequate sleep",
			"Review your stress management strategies",
			"Consider adjusting your daily routine",
		)
	}
	return append(out, "Keep logging your mood to track progress")
}

func moodInsights(value int, note string) Insights {
	ins := Insights{
		Level:         moodLevel(value),
		Suggestions:   moodSuggestions(value),
		Encouragement: encouragement(value),
	}
	if note != "" {
		na := analyzeNote(note)
		ins.NoteAnalysis = &na
	}
	return ins
}

func moodSuggestions(value int) []string {
	switch {
	case value <= 3:
		return []string{
			"Consider reaching out to a friend or family member",
			"Try some gentle breathing exercises",
			"Take a short walk if possible",
			"Listen to calming music",
			"Consider professional support if feelings persist",
		}
	case value <= 6:
		return []string{
			"Practice gratitude by listing 3 things you're thankful for",
			"Engage in a creative activity",
			"Connect with nature",
			"Do some light exercise or stretching",
			"Journal about your thoughts and feelings",
		}
	default:
		return []string{
			"Share your positive energy with others",
			"Reflect on what's contributing to your good mood",
			"Plan something nice for your future self",
			"Practice mindfulness to stay present",
			"Consider helping someone else who might need support",
		}
	}
}

func encouragement(value int) string {
	switch {
	case value <= 3:
		return "I'm here for you. It's okay to have difficult days - they don't last forever. You're stronger than you know."
	case value <= 6:
		return "You're doing well by checking in with yourself. Every small step towards wellness matters."
	default:
		return "It's wonderful to see you feeling good! Remember to appreciate these positive moments."
	}
}

var noteThemes = map[string][]string{
	"work_stress":  {"work", "job", "boss", "deadline", "meeting", "colleague"},
	"relationship": {"friend", "family", "partner", "relationship", "argue", "fight"},
	"health":       {"tired", "sick", "pain", "sleep", "energy", "health"},
	"achievement":  {"accomplished", "proud", "success", "goal", "achievement"},
	"anxiety":      {"worried", "anxious", "nervous", "scared", "panic"},
	"gratitude":    {"thankful", "grateful", "blessed", "appreciate"},
}

var (
	positiveWords = []string{"good", "great", "happy", "love", "wonderful", "amazing"}
	negativeWords = []string{"bad", "terrible", "hate", "awful", "sad", "angry"}
)

func analyzeNote(note string) NoteAnalysis {
	lower := strings.ToLower(note)
	var themes []string
	for theme, keywords := range noteThemes {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				themes = append(themes, theme)
				break
			}
		}
	}
	sort.Strings(themes)

	containsAny := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	return NoteAnalysis{
		Themes:           themes,
		WordCount:        len(strings.Fields(note)),
		HasPositiveWords: containsAny(positiveWords),
		HasNegativeWords: containsAny(negativeWords),
	}
}
