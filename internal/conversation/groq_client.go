package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GroqClient talks to Groq's OpenAI-compatible chat completion API.
type GroqClient struct {
	client *openai.Client
	model  string
}

func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *GroqClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if strings.TrimSpace(model) == "" {
		return LLMResponse{}, errors.New("conversation: groq model is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, block := range req.System {
		if strings.TrimSpace(block) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: block,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   int(req.MaxTokens),
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: groq completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("conversation: groq returned no choices")
	}

	return LLMResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		StopReason: string(resp.Choices[0].FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}
