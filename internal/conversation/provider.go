package conversation

import (
	"fmt"
	"strings"

	"github.com/saharalabs/helpline/pkg/logging"
)

const (
	// LLMProviderAuto prefers Groq and falls back to Bedrock.
	LLMProviderAuto = "auto"
	// LLMProviderGroq forces the Groq client when credentials exist.
	LLMProviderGroq = "groq"
	// LLMProviderBedrock forces the Bedrock client when configured.
	LLMProviderBedrock = "bedrock"
)

// LLMSelectionConfig captures what is needed to build completion clients.
type LLMSelectionConfig struct {
	Preference     string
	GroqAPIKey     string
	GroqBaseURL    string
	GroqModel      string
	Bedrock        bedrockConverseAPI
	BedrockModelID string
}

// BuildLLMClient instantiates an LLMClient based on the preferred provider.
// It returns the client, the provider that was selected, and a reason when no
// provider could be initialized.
func BuildLLMClient(cfg LLMSelectionConfig, logger *logging.Logger) (LLMClient, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = LLMProviderAuto
	}

	missing := map[string]string{}
	var groqClient LLMClient
	var bedrockClient LLMClient

	if cfg.GroqAPIKey != "" {
		groqClient = NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
	} else {
		missing[LLMProviderGroq] = "GROQ_API_KEY missing"
	}

	if cfg.Bedrock != nil && cfg.BedrockModelID != "" {
		bedrockClient = NewBedrockClient(cfg.Bedrock, cfg.BedrockModelID)
	} else {
		var reasons []string
		if cfg.Bedrock == nil {
			reasons = append(reasons, "bedrock runtime client not configured")
		}
		if cfg.BedrockModelID == "" {
			reasons = append(reasons, "BEDROCK_MODEL_ID missing")
		}
		missing[LLMProviderBedrock] = strings.Join(reasons, ", ")
	}

	if preference != LLMProviderAuto {
		if preference == LLMProviderGroq && groqClient != nil {
			return groqClient, LLMProviderGroq, ""
		}
		if preference == LLMProviderBedrock && bedrockClient != nil {
			return bedrockClient, LLMProviderBedrock, ""
		}
		reason := missing[preference]
		if reason == "" {
			reason = fmt.Sprintf("%s client not configured", preference)
		}
		return nil, "", reason
	}

	if groqClient != nil && bedrockClient != nil {
		return NewFallbackLLMClient(groqClient, bedrockClient, logger), LLMProviderGroq + "+" + LLMProviderBedrock, ""
	}
	if groqClient != nil {
		return groqClient, LLMProviderGroq, ""
	}
	if bedrockClient != nil {
		return bedrockClient, LLMProviderBedrock, ""
	}

	var reasons []string
	for _, provider := range []string{LLMProviderGroq, LLMProviderBedrock} {
		if msg := missing[provider]; msg != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", provider, msg))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no LLM providers configured")
	}
	return nil, "", strings.Join(reasons, "; ")
}
