package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jarvis/internal/domain"
	"jarvis/internal/llm"
)

// SystemPrompt is the exact analyzer instruction the Groq-backed
// analyzer-server sends as the system message.
const SystemPrompt = `You are an emotion signal analyzer for a chatbot.
Return ONLY valid JSON with keys:
- S: float in [0,1] (positive signal)
- D: float in [0,1] (negative signal)
- C: float in [0.5,1.5] (context intensity)
- user_emotion: short string label
No markdown, no extra text.`

// LLMAnalyze asks the given provider/model to score a message, expecting
// a bare JSON object back. The caller decides the fallback on error.
func LLMAnalyze(ctx context.Context, provider llm.Provider, model, message string) (domain.Signal, error) {
	resp, err := provider.Complete(ctx, domain.LLMRequest{
		Model:  model,
		System: SystemPrompt,
		Messages: []domain.ChatMessage{
			{Role: "user", Content: message},
		},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		return domain.Signal{}, fmt.Errorf("analyzer llm call failed: %w", err)
	}

	var out struct {
		S           float64 `json:"S"`
		D           float64 `json:"D"`
		C           float64 `json:"C"`
		UserEmotion string  `json:"user_emotion"`
	}
	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return domain.Signal{}, fmt.Errorf("analyzer llm returned malformed json: %w", err)
	}

	s, d, c := Clamp(out.S, out.D, out.C)
	return domain.Signal{S: s, D: d, C: c, UserEmotion: out.UserEmotion}, nil
}
