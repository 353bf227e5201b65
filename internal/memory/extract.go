package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"jarvis/internal/domain"
	"jarvis/internal/llm"
)

// FactExtractorPrompt is the exact instruction the backend sends when
// asking a model to pull personal facts out of a single user message.
const FactExtractorPrompt = `You are a fact extraction engine. Analyze the user message and extract personal facts about the user.

Return ONLY valid JSON with key "facts" containing an array of objects.
Each object has:
- "key": short identifier (e.g. "name", "favorite_food", "job", "pet_name")
- "value": the extracted value
- "category": one of "personal", "preference", "work", "relationship", "general"
- "confidence": float 0-1 (how certain this fact is)

Rules:
- Only extract facts that the user explicitly states about themselves.
- Do NOT extract facts about other people unless it's a relationship (e.g. "my sister is...")
- Do NOT extract opinions or emotions as facts.
- If no facts are found, return {"facts": []}
- Keep keys in English, values can be in original language.

No markdown, no extra text. JSON only.`

// ExtractedFact is one candidate fact a model pulled out of a message,
// still carrying the confidence the caller needs to decide whether to
// persist it.
type ExtractedFact struct {
	Key        string  `json:"key"`
	Value      string  `json:"value"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ExtractFacts asks the given provider/model to pull personal facts out
// of a single message. Malformed entries (missing key or value) are
// dropped rather than failing the whole call.
func ExtractFacts(ctx context.Context, provider llm.Provider, model, message string) ([]ExtractedFact, error) {
	resp, err := provider.Complete(ctx, domain.LLMRequest{
		Model:  model,
		System: FactExtractorPrompt,
		Messages: []domain.ChatMessage{
			{Role: "user", Content: message},
		},
		MaxTokens:   400,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("fact extraction llm call failed: %w", err)
	}

	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out struct {
		Facts []ExtractedFact `json:"facts"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("fact extraction returned malformed json: %w", err)
	}

	facts := make([]ExtractedFact, 0, len(out.Facts))
	for _, f := range out.Facts {
		if f.Key == "" || f.Value == "" {
			continue
		}
		if f.Category == "" {
			f.Category = "general"
		}
		facts = append(facts, f)
	}
	return facts, nil
}
