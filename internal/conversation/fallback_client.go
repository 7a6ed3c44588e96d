package conversation

import (
	"context"

	"github.com/saharalabs/helpline/pkg/logging"
)

// FallbackLLMClient wraps a primary LLM client with a fallback provider.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient creates a fallback-enabled client. A nil fallback
// leaves only the primary in play.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)
	if c.fallback == nil {
		return LLMResponse{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return LLMResponse{}, fallbackErr
	}

	c.logger.Info("fallback LLM succeeded after primary failure")
	return fallbackResp, nil
}
