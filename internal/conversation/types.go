package conversation

import (
	"context"
	"time"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one role-tagged turn sent to the completion service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is one completed exchange in a user's conversation log. Records are
// append-only and never mutated after they are written.
type Record struct {
	UserInput         string    `json:"user_input"`
	AssistantResponse string    `json:"assistant_response"`
	Sentiment         string    `json:"sentiment_label"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a provider-neutral completion request. Model may be left
// empty to use the client's configured default.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// ReplyMessenger delivers replies back to the end user (e.g. via WhatsApp).
type ReplyMessenger interface {
	SendReply(ctx context.Context, reply OutboundReply) error
}

// OutboundReply carries the data required to push a message to the user.
type OutboundReply struct {
	To       string
	From     string
	Body     string
	Metadata map[string]string
}

// InboundMessage is one webhook event after the dispatcher has derived the
// user identity from the transport address.
type InboundMessage struct {
	UserID  string
	ReplyTo string
	Body    string
}
