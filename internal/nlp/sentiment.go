package nlp

import (
	"context"
	"errors"

	"github.com/saharalabs/helpline/pkg/logging"
)

// sentimentMaxChars bounds the text sent to the sentiment model; anything
// longer is truncated to its prefix.
const sentimentMaxChars = 500

// SentimentClient labels text with a coarse sentiment via a hosted model.
type SentimentClient struct {
	api   *client
	model string
}

func NewSentimentClient(baseURL, token, model string, logger *logging.Logger) *SentimentClient {
	return &SentimentClient{
		api:   newClient(baseURL, token, logger),
		model: model,
	}
}

type sentimentScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analyze returns the top sentiment label for the text.
func (c *SentimentClient) Analyze(ctx context.Context, text string) (string, error) {
	runes := []rune(text)
	if len(runes) > sentimentMaxChars {
		text = string(runes[:sentimentMaxChars])
	}

	payload := map[string]any{"inputs": text}

	// The API returns one ranked score list per input.
	var nested [][]sentimentScore
	if err := c.api.post(ctx, c.model, payload, &nested); err != nil {
		return "", err
	}
	if len(nested) == 0 || len(nested[0]) == 0 {
		return "", errors.New("nlp: sentiment response was empty")
	}

	best := nested[0][0]
	for _, score := range nested[0][1:] {
		if score.Score > best.Score {
			best = score
		}
	}
	if best.Label == "" {
		return "", errors.New("nlp: sentiment response had no label")
	}
	return best.Label, nil
}
