// Package sentiment scores the emotional tone, mental-health indicators and
// urgency of a user message using keyword lexicons. Scores are consumed as
// opaque values by the conversation and mood layers.
package sentiment

import (
	"regexp"
	"strings"
)

var emotionKeywords = map[string][]string{
	"joy": {
		"happy", "joyful", "excited", "thrilled", "elated", "cheerful",
		"delighted", "pleased", "content", "glad", "euphoric", "blissful",
		"overjoyed", "ecstatic", "wonderful", "amazing", "fantastic",
	},
	"sadness": {
		"sad", "depressed", "down", "blue", "melancholy", "gloomy",
		"dejected", "despondent", "heartbroken", "miserable", "sorrowful",
		"grief", "mourn", "weep", "cry", "tearful", "devastated",
	},
	"anger": {
		"angry", "mad", "furious", "rage", "irritated", "annoyed",
		"frustrated", "outraged", "livid", "enraged", "hostile",
		"resentful", "bitter", "aggravated", "irate",
	},
	"fear": {
		"afraid", "scared", "terrified", "frightened", "anxious",
		"worried", "nervous", "panic", "dread", "alarmed",
		"apprehensive", "uneasy", "concerned", "stressed", "overwhelmed",
	},
	"disgust": {
		"disgusted", "revolted", "repulsed", "sickened", "nauseated",
		"appalled", "horrified", "repelled", "offended",
	},
	"surprise": {
		"surprised", "shocked", "amazed", "astonished", "stunned",
		"bewildered", "startled", "astounded",
	},
	"trust": {
		"trust", "confident", "secure", "safe", "comfortable",
		"reassured", "certain", "believing", "faith", "reliable",
	},
	"anticipation": {
		"excited", "eager", "hopeful", "optimistic", "expectant",
		"anticipating", "pumped",
	},
}

var intensityModifiers = map[string]float64{
	"very": 1.5, "extremely": 2.0, "incredibly": 2.0, "absolutely": 1.8,
	"completely": 1.7, "totally": 1.6, "really": 1.4, "quite": 1.3,
	"pretty": 1.2, "so": 1.4, "super": 1.6,
	"slightly": 0.7, "somewhat": 0.8, "barely": 0.5, "hardly": 0.4,
	"not": -1.0, "no": -1.0, "never": -1.0,
}

var (
	crisisPatterns = []string{
		"end it all", "can't go on", "hurt myself", "kill myself",
		"suicide", "end my life", "no point living",
	}
	highUrgencyPatterns = []string{
		"emergency", "urgent", "crisis", "immediate help",
		"can't breathe", "panic attack", "breaking down",
	}
	mediumUrgencyPatterns = []string{
		"really struggling", "need help", "can't handle",
		"breaking point", "overwhelmed", "desperate",
	}

	depressionKeywords = []string{
		"hopeless", "worthless", "empty", "numb", "exhausted",
		"can't sleep", "no energy", "don't care", "giving up",
		"pointless", "useless", "burden",
	}
	anxietyKeywords = []string{
		"panic", "racing thoughts", "can't breathe", "heart racing",
		"sweating", "shaking", "dizzy", "restless", "on edge", "jumpy",
	}
	stressKeywords = []string{
		"overwhelmed", "pressure", "deadline", "too much",
		"can't handle", "breaking point", "stressed out", "burned out",
	}
	positiveCopingKeywords = []string{
		"meditation", "exercise", "therapy", "counseling",
		"support group", "self care", "journaling", "mindfulness",
		"breathing exercises", "talking to someone",
	}
	supportSeekingKeywords = []string{
		"need help", "talk to someone", "therapist", "counselor",
		"support", "advice", "guidance", "professional help",
	}
)

// Indicators lists the mental-health keywords found in a message.
type Indicators struct {
	DepressionSigns  []string `json:"depression_signs"`
	AnxietySigns     []string `json:"anxiety_signs"`
	StressIndicators []string `json:"stress_indicators"`
	PositiveCoping   []string `json:"positive_coping"`
	SupportSeeking   []string `json:"support_seeking"`
	CrisisIndicators []string `json:"crisis_indicators"`
}

// Analysis is the full sentiment result for one message.
type Analysis struct {
	OverallSentiment string             `json:"overall_sentiment"`
	Polarity         float64            `json:"polarity"`
	Subjectivity     float64            `json:"subjectivity"`
	Emotions         map[string]float64 `json:"emotions"`
	Indicators       Indicators         `json:"mental_health_indicators"`
	UrgencyLevel     string             `json:"urgency_level"`
	Insights         []string           `json:"insights"`
	Confidence       float64            `json:"confidence"`
}

// punctRuns matches repeated '!' or '?' so "help!!!" collapses to "help!".
// RE2 has no backreferences, so each run kind is matched separately and
// reduced to its first rune.
var punctRuns = regexp.MustCompile(`!{2,}|\?{2,}`)

// Analyze scores a single message. Empty input yields a neutral result.
func Analyze(text string) Analysis {
	if strings.TrimSpace(text) == "" {
		return Analysis{
			OverallSentiment: "neutral",
			Emotions:         map[string]float64{},
			UrgencyLevel:     "low",
			Insights:         []string{"No text provided for analysis"},
		}
	}

	cleaned := preprocess(text)
	emotions := detectEmotions(cleaned)
	indicators := detectIndicators(cleaned)
	urgency := detectUrgency(cleaned)
	polarity, subjectivity := polarityScores(emotions)
	overall := classify(polarity, emotions)

	return Analysis{
		OverallSentiment: overall,
		Polarity:         polarity,
		Subjectivity:     subjectivity,
		Emotions:         emotions,
		Indicators:       indicators,
		UrgencyLevel:     urgency,
		Insights:         insights(overall, emotions, indicators, urgency),
		Confidence:       confidence(subjectivity, emotions),
	}
}

func preprocess(text string) string {
	text = strings.ToLower(text)
	text = punctRuns.ReplaceAllStringFunc(text, func(run string) string {
		return run[:1]
	})
	for _, c := range [][2]string{
		{"won't", "will not"}, {"can't", "cannot"}, {"n't", " not"},
		{"'re", " are"}, {"'ve", " have"}, {"'ll", " will"},
		{"'d", " would"}, {"'m", " am"},
	} {
		text = strings.ReplaceAll(text, c[0], c[1])
	}
	return text
}

func detectEmotions(text string) map[string]float64 {
	words := strings.Fields(text)
	scores := make(map[string]float64, len(emotionKeywords))
	for emotion, keywords := range emotionKeywords {
		var score float64
		for i, word := range words {
			matched := false
			for _, kw := range keywords {
				if strings.Contains(word, kw) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			base := 1.0
			if i > 0 {
				if mod, ok := intensityModifiers[words[i-1]]; ok {
					if mod < 0 {
						base = -base
					} else {
						base *= mod
					}
				}
			}
			score += base
		}
		norm := float64(len(words)) / 10
		if norm < 1 {
			norm = 1
		}
		score /= norm
		if score > 1 {
			score = 1
		}
		scores[emotion] = score
	}
	return scores
}

func found(text string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func detectIndicators(text string) Indicators {
	return Indicators{
		DepressionSigns:  found(text, depressionKeywords),
		AnxietySigns:     found(text, anxietyKeywords),
		StressIndicators: found(text, stressKeywords),
		PositiveCoping:   found(text, positiveCopingKeywords),
		SupportSeeking:   found(text, supportSeekingKeywords),
		CrisisIndicators: found(text, crisisPatterns),
	}
}

func detectUrgency(text string) string {
	switch {
	case len(found(text, crisisPatterns)) > 0:
		return "crisis"
	case len(found(text, highUrgencyPatterns)) > 0:
		return "high"
	case len(found(text, mediumUrgencyPatterns)) > 0:
		return "medium"
	default:
		return "low"
	}
}

// polarityScores derives polarity from the balance of positive and negative
// emotion scores, and subjectivity from total emotional loading.
func polarityScores(emotions map[string]float64) (polarity, subjectivity float64) {
	positive := emotions["joy"] + emotions["trust"] + emotions["anticipation"]
	negative := emotions["sadness"] + emotions["fear"] + emotions["anger"] + emotions["disgust"]
	polarity = clamp(positive-negative, -1, 1)
	subjectivity = clamp(positive+negative+emotions["surprise"], 0, 1)
	return polarity, subjectivity
}

func classify(polarity float64, emotions map[string]float64) string {
	if polarity >= 0.3 {
		return "positive"
	}
	if polarity <= -0.3 {
		return "negative"
	}
	dominant := dominantEmotion(emotions)
	switch dominant {
	case "sadness", "fear", "anger", "disgust":
		return "negative"
	case "joy", "trust", "anticipation":
		return "positive"
	}
	return "neutral"
}

func dominantEmotion(emotions map[string]float64) string {
	best, bestScore := "", 0.0
	for e, s := range emotions {
		if s > bestScore {
			best, bestScore = e, s
		}
	}
	return best
}

func insights(overall string, emotions map[string]float64, ind Indicators, urgency string) []string {
	var out []string
	switch overall {
	case "negative":
		out = append(out, "The message expresses negative emotions or concerns")
	case "positive":
		out = append(out, "The message expresses positive emotions or experiences")
	default:
		out = append(out, "The message has a neutral emotional tone")
	}

	var dominant []string
	for e, s := range emotions {
		if s > 0.3 {
			dominant = append(dominant, e)
		}
	}
	if len(dominant) > 0 {
		out = append(out, "Dominant emotions detected: "+strings.Join(dominant, ", "))
	}

	switch {
	case len(ind.CrisisIndicators) > 0:
		out = append(out, "Crisis indicators detected - immediate support may be needed")
	case len(ind.DepressionSigns) > 0:
		out = append(out, "Signs of depression detected")
	case len(ind.AnxietySigns) > 0:
		out = append(out, "Signs of anxiety detected")
	}
	if len(ind.PositiveCoping) > 0 {
		out = append(out, "Positive coping strategies mentioned")
	}
	if len(ind.SupportSeeking) > 0 {
		out = append(out, "User appears to be seeking support or help")
	}

	switch urgency {
	case "crisis":
		out = append(out, "CRISIS LEVEL: immediate intervention may be required")
	case "high":
		out = append(out, "High urgency: user needs prompt support")
	case "medium":
		out = append(out, "Medium urgency: user would benefit from support")
	}
	return out
}

func confidence(subjectivity float64, emotions map[string]float64) float64 {
	var maxEmotion float64
	for _, s := range emotions {
		if s > maxEmotion {
			maxEmotion = s
		}
	}
	return clamp((subjectivity+maxEmotion)/2, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
