package orchestrator

import (
	"fmt"
	"strings"

	"jarvis/internal/domain"
)

const (
	profileByteCap = 1500
	memoryByteCap  = 2000
	skillByteCap   = 1000
	historyLimit   = 20
)

// expressionGuide is the per-dominant-emotion reply-style lookup table,
// one entry per canonical emotion.
var expressionGuide = map[string]string{
	"Joy":        "Respond warmly and share in the user's enthusiasm; keep the energy light.",
	"Serenity":   "Respond calmly and steadily; don't inject urgency the user hasn't shown.",
	"Love":       "Respond with warmth and attentiveness; make the user feel cared for.",
	"Excitement": "Respond with energy and curiosity; match the user's momentum.",
	"Sadness":    "Respond gently and patiently; acknowledge the down mood before moving on.",
	"Fear":       "Respond reassuringly and concretely; reduce uncertainty rather than add to it.",
	"Anger":      "Respond evenly and without defensiveness; de-escalate rather than match intensity.",
	"Surprise":   "Respond openly and curiously; acknowledge the unexpected before continuing.",
}

// buildHormoneSummary lists hormones above 0.55 as High and below 0.25
// as Low; if neither applies to any hormone, a single balanced line is
// emitted instead.
func buildHormoneSummary(hormones map[string]float64) string {
	var high, low []string
	for _, name := range domain.HormoneNames {
		v := hormones[name]
		switch {
		case v > 0.55:
			high = append(high, fmt.Sprintf("%s=%.2f", name, v))
		case v < 0.25:
			low = append(low, fmt.Sprintf("%s=%.2f", name, v))
		}
	}
	if len(high) == 0 && len(low) == 0 {
		return "Hormones are balanced across the board."
	}
	var lines []string
	if len(high) > 0 {
		lines = append(lines, "High: "+strings.Join(high, ", "))
	}
	if len(low) > 0 {
		lines = append(lines, "Low: "+strings.Join(low, ", "))
	}
	return strings.Join(lines, "\n")
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// PromptInputs bundles everything the assembler needs beyond the fixed
// per-turn state, i.e. the context-gathering outputs from orchestrator
// step 3.
type PromptInputs struct {
	TurnResult     domain.TurnResult
	UserEmotion    string
	TrackerSummary string
	Profile        string
	MemoryContext  string
	SkillContext   string
	History        []domain.ChatMessage
	UserMessage    string
}

// BuildSystemPrompt renders the fixed chat template: bot-state header,
// expression guide for the dominant emotion, hormone summary, the
// tracker's user-emotion block, then the byte-capped profile/memory/
// skill sections.
func BuildSystemPrompt(in PromptInputs) string {
	var b strings.Builder

	b.WriteString("You are Jarvis, a personal AI assistant with a simulated emotional state that shapes how you respond.\n\n")
	b.WriteString("Current state:\n")
	fmt.Fprintf(&b, "- Dominant emotion: %s (%.2f)\n", in.TurnResult.DominantEmotion, in.TurnResult.DominantScore)
	fmt.Fprintf(&b, "- Emotion blend: %s\n", in.TurnResult.EmotionBlend)
	fmt.Fprintf(&b, "- Trust: %.0f%%\n", in.TurnResult.Trust*100)
	fmt.Fprintf(&b, "- User emotion: %s\n\n", in.UserEmotion)

	guide, ok := expressionGuide[in.TurnResult.DominantEmotion]
	if !ok {
		guide = "Respond naturally, adapting tone to the conversation."
	}
	b.WriteString("Expression guide: " + guide + "\n\n")

	b.WriteString("Hormone summary:\n")
	b.WriteString(buildHormoneSummary(in.TurnResult.Hormones))
	b.WriteString("\n\n")

	if in.TrackerSummary != "" {
		b.WriteString(in.TrackerSummary)
		b.WriteString("\n\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Be empathetic and concise.\n")
	b.WriteString("- Keep continuity with prior context.\n")
	b.WriteString("- Use what you know about the user to personalize your response.\n")
	b.WriteString("- If the user shares personal info, acknowledge it naturally.\n")

	if in.Profile != "" {
		b.WriteString("\n" + truncateBytes(in.Profile, profileByteCap) + "\n")
	}
	if in.MemoryContext != "" {
		b.WriteString("\n" + truncateBytes(in.MemoryContext, memoryByteCap) + "\n")
	}
	if in.SkillContext != "" {
		b.WriteString("\n" + truncateBytes(in.SkillContext, skillByteCap) + "\n")
	}

	return strings.TrimSpace(b.String())
}

// BuildMessages attaches the bounded chat history suffix (last
// historyLimit messages) followed by the current user message.
func BuildMessages(history []domain.ChatMessage, userMessage string) []domain.ChatMessage {
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	out := make([]domain.ChatMessage, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, domain.ChatMessage{Role: "user", Content: userMessage})
	return out
}
