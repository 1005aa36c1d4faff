package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePositiveMessage(t *testing.T) {
	a := Analyze("I am so happy today")

	assert.Equal(t, "positive", a.OverallSentiment)
	assert.Greater(t, a.Polarity, 0.0)
	assert.Equal(t, "low", a.UrgencyLevel)
	assert.Greater(t, a.Emotions["joy"], 0.0)
}

func TestAnalyzeNegativeWithDepressionSigns(t *testing.T) {
	a := Analyze("I feel very sad and hopeless")

	assert.Equal(t, "negative", a.OverallSentiment)
	assert.Less(t, a.Polarity, 0.0)
	assert.Contains(t, a.Indicators.DepressionSigns, "hopeless")
}

func TestAnalyzeNegationFlipsEmotion(t *testing.T) {
	a := Analyze("I am not happy")

	assert.Equal(t, "negative", a.OverallSentiment)
	assert.Less(t, a.Emotions["joy"], 0.0)
}

func TestAnalyzeCrisisUrgency(t *testing.T) {
	a := Analyze("Some days I just want to end it all")

	assert.Equal(t, "crisis", a.UrgencyLevel)
	assert.NotEmpty(t, a.Indicators.CrisisIndicators)
	assert.Contains(t, a.Insights, "CRISIS LEVEL: immediate intervention may be required")
}

func TestAnalyzeHighUrgency(t *testing.T) {
	a := Analyze("I had a panic attack at work")
	assert.Equal(t, "high", a.UrgencyLevel)
}

func TestAnalyzeMediumUrgencyAndSupportSeeking(t *testing.T) {
	a := Analyze("I'm really struggling and need help")

	assert.Equal(t, "medium", a.UrgencyLevel)
	assert.Contains(t, a.Indicators.SupportSeeking, "need help")
}

func TestAnalyzePositiveCoping(t *testing.T) {
	a := Analyze("meditation and journaling have been helping me")

	assert.Contains(t, a.Indicators.PositiveCoping, "meditation")
	assert.Contains(t, a.Indicators.PositiveCoping, "journaling")
	assert.Contains(t, a.Insights, "Positive coping strategies mentioned")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := Analyze("   ")

	assert.Equal(t, "neutral", a.OverallSentiment)
	assert.Equal(t, "low", a.UrgencyLevel)
	assert.Equal(t, []string{"No text provided for analysis"}, a.Insights)
}

func TestIntensityModifierRaisesScore(t *testing.T) {
	plain := Analyze("I am happy about it today friend")
	boosted := Analyze("I am extremely happy about it today")

	assert.GreaterOrEqual(t, boosted.Emotions["joy"], plain.Emotions["joy"])
}

func TestPreprocessExpandsContractions(t *testing.T) {
	assert.Equal(t, "i cannot sleep", preprocess("I can't sleep"))
	assert.Equal(t, "i will not give up!", preprocess("I won't give up!!!"))
}

func TestPreprocessCollapsesPunctuationRuns(t *testing.T) {
	assert.Equal(t, "help!", preprocess("help!!!"))
	assert.Equal(t, "really?", preprocess("really???"))
	assert.Equal(t, "what!? now", preprocess("what!!?? now"))
	assert.Equal(t, "fine!", preprocess("fine!"))
}
