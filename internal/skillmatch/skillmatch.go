// Package skillmatch provides a minimal in-process keyword-to-skill
// matcher: a simplified stand-in for the original's file-backed
// SKILL.md directory, scoped to the (name, keywords, context) triple
// the orchestrator needs to inject an optional skill blurb into a
// prompt.
package skillmatch

import (
	"strings"

	"jarvis/internal/domain"
)

// Matcher holds a fixed table of skill definitions and finds the first
// one whose keyword appears in a message.
type Matcher struct {
	skills []domain.SkillDefinition
}

func New(skills []domain.SkillDefinition) *Matcher {
	return &Matcher{skills: skills}
}

// Default returns a small built-in skill table covering the obvious
// cases the original's bundled SKILL.md files handled.
func Default() *Matcher {
	return New([]domain.SkillDefinition{
		{
			Name:     "weather",
			Keywords: []string{"weather", "forecast", "temperature", "rain"},
			Context:  "The user is asking about weather. Answer conversationally; you do not have live weather data, so say so if asked for a specific forecast.",
		},
		{
			Name:     "time",
			Keywords: []string{"what time", "what day", "date today"},
			Context:  "The user is asking about the current time or date. You do not have a live clock; acknowledge that plainly.",
		},
		{
			Name:     "reminder",
			Keywords: []string{"remind me", "reminder", "don't forget"},
			Context:  "The user wants a reminder. You cannot schedule notifications; offer to note it down instead.",
		},
	})
}

// Match returns the first matching skill and true, or a zero
// SkillDefinition and false if no keyword matches. Matching is case-insensitive substring containment,
// same as the original's simple trigger scan.
func (m *Matcher) Match(message string) (domain.SkillDefinition, bool) {
	lower := strings.ToLower(message)
	for _, skill := range m.skills {
		for _, kw := range skill.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return skill, true
			}
		}
	}
	return domain.SkillDefinition{}, false
}
