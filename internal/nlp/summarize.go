package nlp

import (
	"context"
	"errors"

	"github.com/saharalabs/helpline/pkg/logging"
)

// SummaryClient shortens text via a hosted summarization model.
type SummaryClient struct {
	api   *client
	model string
}

func NewSummaryClient(baseURL, token, model string, logger *logging.Logger) *SummaryClient {
	return &SummaryClient{
		api:   newClient(baseURL, token, logger),
		model: model,
	}
}

// Summarize returns the text shortened to at most maxLength. Input already
// below minLength is returned unchanged since the model rejects texts shorter
// than its minimum output.
func (c *SummaryClient) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if minLength > 0 && len([]rune(text)) <= minLength {
		return text, nil
	}

	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": maxLength,
			"min_length": minLength,
			"do_sample":  false,
		},
	}

	var results []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := c.api.post(ctx, c.model, payload, &results); err != nil {
		return "", err
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", errors.New("nlp: summary response was empty")
	}
	return results[0].SummaryText, nil
}
