package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"jarvis/internal/domain"
)

// GroqProvider talks to Groq's OpenAI-chat-completions-compatible API via
// the openai-go client pointed at Groq's base URL. Groq's endpoint speaks
// the same wire format OpenAI's does, so the official OpenAI client works
// unmodified against it.
type GroqProvider struct {
	client openai.Client
}

const groqBaseURL = "https://api.groq.com/openai/v1"

func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(groqBaseURL),
		),
	}
}

func (p *GroqProvider) Complete(ctx context.Context, req domain.LLMRequest) (domain.LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.LLMResponse{}, fmt.Errorf("groq completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.LLMResponse{}, fmt.Errorf("groq returned no choices")
	}
	return domain.LLMResponse{Content: resp.Choices[0].Message.Content}, nil
}
