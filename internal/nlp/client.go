package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/saharalabs/helpline/pkg/logging"
)

const defaultInferenceBaseURL = "https://api-inference.huggingface.co"

// client wraps the Hugging Face Inference API shared by the sentiment and
// summarization services.
type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
}

func newClient(baseURL, token string, logger *logging.Logger) *client {
	if baseURL == "" {
		baseURL = defaultInferenceBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type apiError struct {
	Error string `json:"error"`
}

// post sends one inference request, retrying while the model is loading
// (503) or the account is rate limited (429).
func (c *client) post(ctx context.Context, model string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("nlp: failed to marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s", c.baseURL, model)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("nlp: failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("nlp: failed to decode response: %w", err)
				}
				return nil
			}
			lastErr = fmt.Errorf("nlp: inference failed: %s", formatAPIError(resp.StatusCode, respBody))
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				break
			}
		}

		if attempt < 3 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(200+rand.Intn(300)) * time.Millisecond):
			}
		}
	}
	return lastErr
}

func formatAPIError(status int, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Sprintf("status %d", status)
	}
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return fmt.Sprintf("status %d: %s", status, parsed.Error)
	}
	return fmt.Sprintf("status %d: %s", status, string(body))
}
