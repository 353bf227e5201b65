package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jarvis/internal/domain"
)

// Provider is the abstraction the orchestrator calls for both the chat
// reply and (via a separate Config) the analyzer prompt.
type Provider interface {
	Complete(ctx context.Context, req domain.LLMRequest) (domain.LLMResponse, error)
}

type Config struct {
	Provider         string
	GroqAPIKey       string
	AnthropicBaseURL string
	AnthropicAPIKey  string
}

// NewProvider constructs the configured backend. "groq" builds a client
// on top of openai-go pointed at Groq's OpenAI-compatible endpoint;
// "anthropic" builds the hand-rolled Messages API client.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "groq":
		return NewGroqProvider(cfg.GroqAPIKey), nil
	case "anthropic":
		client := &http.Client{Timeout: 60 * time.Second}
		return NewClaudeProvider(client, cfg.AnthropicBaseURL, cfg.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
