package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/saharalabs/helpline/internal/topic"
	"github.com/saharalabs/helpline/pkg/logging"
)

const classifierInstruction = "You are a classifier. Classify the following message into ONLY one of these topics:\n" +
	"- mental health\n" +
	"- domestic violence\n" +
	"- career guidance\n" +
	"- emergency contact\n\n" +
	"Reply with the exact topic name (e.g., 'emergency contact'). No explanation or additional text.\n" +
	"Message: %q"

const classifierTimeout = 15 * time.Second

// Classifier asks the completion service for a topic label and normalizes the
// result. Any service failure collapses to topic.Unknown; callers re-prompt
// the user rather than surfacing an error.
type Classifier struct {
	llm    LLMClient
	logger *logging.Logger
}

func NewClassifier(llm LLMClient, logger *logging.Logger) *Classifier {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{llm: llm, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, message string) topic.Topic {
	callCtx, cancel := context.WithTimeout(ctx, classifierTimeout)
	defer cancel()

	resp, err := c.llm.Complete(callCtx, LLMRequest{
		Temperature: 0.7,
		Messages: []ChatMessage{{
			Role:    ChatRoleUser,
			Content: fmt.Sprintf(classifierInstruction, message),
		}},
	})
	if err != nil {
		c.logger.Warn("topic classification failed", "error", err)
		return topic.Unknown
	}

	detected := topic.Normalize(resp.Text)
	c.logger.Debug("topic classification result", "raw", resp.Text, "topic", string(detected))
	return detected
}
