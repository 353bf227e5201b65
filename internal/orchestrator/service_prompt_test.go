package orchestrator

import (
	"strings"
	"testing"

	"jarvis/internal/domain"
)

func sampleTurnResult() domain.TurnResult {
	return domain.TurnResult{
		Turn:            3,
		Message:         "hello",
		DominantEmotion: "Joy",
		DominantScore:   0.62,
		EmotionBlend:    "Joy (62%), Serenity (20%)",
		Trust:           0.55,
		Hormones: map[string]float64{
			"Dopamine":       0.7,
			"Serotonin":      0.6,
			"Oxytocin":       0.3,
			"Endorphin":      0.3,
			"Cortisol":       0.1,
			"Adrenaline":     0.2,
			"GABA":           0.3,
			"Norepinephrine": 0.2,
		},
	}
}

func TestBuildSystemPromptIncludesStateAndGuide(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInputs{
		TurnResult:     sampleTurnResult(),
		UserEmotion:    "happy",
		TrackerSummary: "User mood: joyful / bright\n",
	})
	if !strings.Contains(prompt, "Dominant emotion: Joy") {
		t.Fatalf("prompt missing dominant emotion line: %s", prompt)
	}
	if !strings.Contains(prompt, "Respond warmly") {
		t.Fatalf("prompt missing Joy expression guide: %s", prompt)
	}
	if !strings.Contains(prompt, "User mood: joyful") {
		t.Fatalf("prompt missing tracker summary: %s", prompt)
	}
}

func TestBuildSystemPromptTruncatesProfileAndMemory(t *testing.T) {
	prompt := BuildSystemPrompt(PromptInputs{
		TurnResult:    sampleTurnResult(),
		Profile:       strings.Repeat("x", profileByteCap+500),
		MemoryContext: strings.Repeat("m", memoryByteCap+500),
	})
	if strings.Contains(prompt, strings.Repeat("x", profileByteCap+1)) || !strings.Contains(prompt, strings.Repeat("x", profileByteCap)) {
		t.Fatalf("profile section not truncated to byte cap")
	}
	if strings.Contains(prompt, strings.Repeat("m", memoryByteCap+1)) || !strings.Contains(prompt, strings.Repeat("m", memoryByteCap)) {
		t.Fatalf("memory section not truncated to byte cap")
	}
}

func TestBuildSystemPromptFallsBackForUnknownEmotion(t *testing.T) {
	turn := sampleTurnResult()
	turn.DominantEmotion = "Unknown"
	prompt := BuildSystemPrompt(PromptInputs{TurnResult: turn})
	if !strings.Contains(prompt, "Respond naturally") {
		t.Fatalf("expected fallback expression guide, got: %s", prompt)
	}
}

func TestBuildHormoneSummaryHighLow(t *testing.T) {
	summary := buildHormoneSummary(map[string]float64{
		"Dopamine":       0.9,
		"Serotonin":      0.1,
		"Oxytocin":       0.4,
		"Endorphin":      0.4,
		"Cortisol":       0.4,
		"Adrenaline":     0.4,
		"GABA":           0.4,
		"Norepinephrine": 0.4,
	})
	if !strings.Contains(summary, "High: Dopamine") {
		t.Fatalf("expected Dopamine listed high: %s", summary)
	}
	if !strings.Contains(summary, "Low: Serotonin") {
		t.Fatalf("expected Serotonin listed low: %s", summary)
	}
}

func TestBuildHormoneSummaryBalanced(t *testing.T) {
	balanced := map[string]float64{}
	for _, name := range domain.HormoneNames {
		balanced[name] = 0.4
	}
	summary := buildHormoneSummary(balanced)
	if summary != "Hormones are balanced across the board." {
		t.Fatalf("expected balanced summary, got: %s", summary)
	}
}

func TestBuildMessagesAppendsUserMessageAndBoundsHistory(t *testing.T) {
	history := make([]domain.ChatMessage, 0, historyLimit+5)
	for i := 0; i < historyLimit+5; i++ {
		history = append(history, domain.ChatMessage{Role: "user", Content: "old"})
	}
	out := BuildMessages(history, "latest")
	if len(out) != historyLimit+1 {
		t.Fatalf("expected %d messages, got %d", historyLimit+1, len(out))
	}
	if out[len(out)-1].Content != "latest" {
		t.Fatalf("expected last message to be the new user message")
	}
}
