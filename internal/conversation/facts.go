// Package conversation runs the chat loop: prompt construction, fact
// extraction from user utterances and the profile merge that persists them.
package conversation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reflective-ai/reflective-server/internal/model"
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`my name is ([a-zA-Z\s]+)`),
		regexp.MustCompile(`call me ([a-zA-Z\s]+)`),
	}
	titleCaser = cases.Title(language.English)
)

// ExtractFacts parses a user utterance for explicit "store this:" statements
// and name declarations, producing a partial fact delta. Only one branch of
// the store-this handling runs; a store-this message skips name extraction
// entirely. Messages matching no rule yield an empty delta.
func ExtractFacts(message string) model.FactDelta {
	facts := model.FactDelta{}
	lower := strings.ToLower(strings.TrimSpace(message))

	if strings.HasPrefix(lower, "store this:") || strings.HasPrefix(lower, "store this :") {
		_, factText, _ := strings.Cut(lower, ":")
		factText = strings.TrimSpace(factText)
		switch {
		case strings.Contains(factText, "dog") && strings.Contains(factText, "name is"):
			_, petName, _ := strings.Cut(factText, "name is")
			facts["pets"] = []string{titleCaser.String(strings.TrimSpace(petName))}
		case strings.Contains(factText, "cat") && strings.Contains(factText, "name is"):
			_, petName, _ := strings.Cut(factText, "name is")
			facts["pets"] = []string{titleCaser.String(strings.TrimSpace(petName))}
		case strings.Contains(factText, "like") || strings.Contains(factText, "enjoy"):
			// "like" split is preferred when both words appear
			var activity string
			if strings.Contains(factText, "like") {
				_, activity, _ = strings.Cut(factText, "like")
			} else {
				_, activity, _ = strings.Cut(factText, "enjoy")
			}
			facts["support_preferences"] = []string{strings.TrimSpace(activity)}
		default:
			facts["notes"] = []string{factText}
		}
		return facts
	}

	for _, pat := range namePatterns {
		m := pat.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		name := titleCaser.String(strings.TrimSpace(m[1]))
		if len(name) > 1 {
			facts["name"] = name
			break
		}
	}
	return facts
}
