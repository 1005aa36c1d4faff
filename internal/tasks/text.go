package tasks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reflective-ai/reflective-server/internal/model"
)

var tagKeywords = map[string][]string{
	"exercise":   {"exercise", "workout", "gym", "run", "walk", "bike"},
	"meditation": {"meditate", "mindfulness", "breathe", "calm"},
	"social":     {"call", "meet", "friend", "family", "visit"},
	"creative":   {"draw", "write", "paint", "music", "create"},
	"learning":   {"study", "learn", "read", "course", "skill"},
	"health":     {"doctor", "appointment", "medicine", "therapy"},
	"urgent":     {"urgent", "asap", "deadline", "important"},
	"relaxing":   {"relax", "rest", "sleep", "break", "vacation"},
}

func extractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for tag, keywords := range tagKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

var (
	highEffortKeywords = []string{"project", "complete", "finish", "major", "big", "complex"}
	lowEffortKeywords  = []string{"quick", "simple", "easy", "call", "email", "check"}
)

func estimateEffort(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, kw := range highEffortKeywords {
		if strings.Contains(text, kw) {
			return "high"
		}
	}
	for _, kw := range lowEffortKeywords {
		if strings.Contains(text, kw) {
			return "low"
		}
	}
	return "medium"
}

var categorySuggestions = map[string][]string{
	"self_care": {
		"Set a peaceful environment before starting",
		"Practice self-compassion throughout",
		"Celebrate completing this self-care activity",
	},
	"work": {
		"Take breaks every hour",
		"Practice deep breathing if you feel stressed",
		"Remember that your worth isn't tied to productivity",
	},
	"exercise": {
		"Start slowly and listen to your body",
		"Focus on how movement makes you feel",
		"Celebrate any movement, no matter how small",
	},
	"social": {
		"Be present and engaged",
		"Practice active listening",
		"It's okay if social interactions feel challenging",
	},
}

func wellnessSuggestions(category, wellnessImpact string) []string {
	suggestions := append([]string{}, categorySuggestions[category]...)
	switch wellnessImpact {
	case model.ImpactChallenging:
		suggestions = append(suggestions,
			"Break this task into smaller, manageable steps",
			"Plan a self-care activity for after completion",
			"Remember it's okay to ask for help",
		)
	case model.ImpactPositive:
		suggestions = append(suggestions,
			"Savor the positive feelings this task brings",
			"Notice how accomplishing this improves your mood",
		)
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

var motivationalMessages = map[string]string{
	"self_care":   "Taking care of yourself is not selfish - it's essential!",
	"exercise":    "Every step counts towards a healthier, happier you!",
	"social":      "Connection is a fundamental human need. Great choice!",
	"mindfulness": "A few moments of mindfulness can transform your entire day.",
	"creative":    "Creativity feeds the soul. Enjoy this creative journey!",
	"work":        "Approach this with intention and remember to take breaks.",
	"learning":    "Learning is growing. Your mind will thank you!",
	"health":      "Prioritizing your health is an act of self-love.",
}

func motivation(task model.Task) string {
	msg, ok := motivationalMessages[task.Category]
	if !ok {
		msg = "You've got this! Every task completed is progress made."
	}
	if task.Priority == model.PriorityUrgent {
		msg += " Remember to breathe and take it one step at a time."
	} else if task.WellnessImpact == model.ImpactChallenging {
		msg += " Be gentle with yourself as you work on this."
	}
	return msg
}

var celebrationTemplates = []string{
	"Fantastic! You completed '%s'! Take a moment to appreciate your accomplishment.",
	"Well done! Finishing '%s' shows your dedication and strength.",
	"Awesome job completing '%s'! You're making great progress.",
	"Congratulations on finishing '%s'! Your effort is paying off.",
	"You did it! '%s' is complete. Feel proud of your achievement!",
}

func celebration(task model.Task) string {
	tpl := celebrationTemplates[len(task.Title)%len(celebrationTemplates)]
	msg := fmt.Sprintf(tpl, task.Title)
	switch task.Category {
	case "self_care":
		msg += " Your future self will thank you for this self-care!"
	case "exercise":
		msg += " Your body and mind are stronger for it!"
	case "social":
		msg += " Connection and relationships matter so much!"
	}
	return msg
}

var wellnessTips = map[string]string{
	"work":        "Remember: You are not your productivity. Take breaks and be kind to yourself.",
	"self_care":   "Self-care isn't selfish - it's how you show up better for everything else.",
	"exercise":    "Listen to your body. The goal is to feel good, not to punish yourself.",
	"social":      "Quality over quantity. One meaningful connection is worth more than many shallow ones.",
	"mindfulness": "Start small. Even 3 minutes of mindfulness can shift your entire day.",
	"creative":    "There's no wrong way to be creative. Enjoy the process, not just the outcome.",
	"health":      "Small, consistent actions in health create the biggest transformations.",
	"learning":    "Learning is a gift you give yourself. Be patient with the process.",
}

func wellnessTip(category string) string {
	if tip, ok := wellnessTips[category]; ok {
		return tip
	}
	return "Remember to be patient and kind with yourself through this task."
}

func taskInsights(all, completed []model.Task, categories map[string]int, rate float64) []string {
	var out []string
	switch {
	case rate >= 0.8:
		out = append(out, "Excellent! You're completing most of your tasks.")
	case rate >= 0.6:
		out = append(out, "Good job! You're making solid progress on your tasks.")
	case rate >= 0.4:
		out = append(out, "You're making progress, but there's room to improve completion rates.")
	default:
		out = append(out, "Consider breaking larger tasks into smaller, more manageable steps.")
	}

	if len(categories) > 0 {
		top, topCount := "", 0
		for cat, n := range categories {
			if n > topCount || (n == topCount && cat < top) {
				top, topCount = cat, n
			}
		}
		out = append(out, fmt.Sprintf("Your most common task category is '%s'.", top))
	}

	positive := 0
	for _, t := range completed {
		if t.WellnessImpact == model.ImpactPositive {
			positive++
		}
	}
	if positive > 0 {
		out = append(out, fmt.Sprintf("You completed %d wellness-positive tasks!", positive))
	}
	return out
}

func taskRecommendations(all []model.Task, categories map[string]int, rate float64) []string {
	var out []string
	if rate < 0.5 {
		out = append(out,
			"Consider breaking large tasks into smaller, manageable steps",
			"Set realistic deadlines that account for your schedule",
			"Focus on completing 2-3 important tasks rather than many small ones",
		)
	}
	if len(all) > 0 && float64(categories["self_care"])/float64(len(all)) < 0.2 {
		out = append(out, "Consider adding more self-care tasks to maintain balance")
	}
	out = append(out,
		"Celebrate each completed task, no matter how small",
		"Use the task completion as an opportunity for mindfulness",
		"Remember that productivity doesn't define your worth",
	)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
