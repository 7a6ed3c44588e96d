package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// LLM provider selection: "groq", "bedrock", or "auto" (Groq with
	// Bedrock fallback when both are configured).
	LLMProvider string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BedrockModelID      string

	// Hugging Face inference endpoints for sentiment and summarization.
	HFAPIToken       string
	HFSentimentModel string
	HFSummaryModel   string
	SummaryMaxLength int
	SummaryMinLength int

	HistoryWindow int

	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWebhookSecret string
	WhatsAppFromNumber  string

	EmergencyContactNumber string
	EmergencyEmail         string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// ConversationStore selects the log backend: "redis", "postgres", or "memory".
	ConversationStore string
	// SessionStore selects the topic-state backend: "memory" or "redis".
	SessionStore string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "auto"))),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),

		HFAPIToken:       getEnv("HF_API_TOKEN", ""),
		HFSentimentModel: getEnv("HF_SENTIMENT_MODEL", "cardiffnlp/twitter-roberta-base-sentiment-latest"),
		HFSummaryModel:   getEnv("HF_SUMMARY_MODEL", "facebook/bart-large-cnn"),
		SummaryMaxLength: getEnvAsInt("SUMMARY_MAX_LENGTH", 400),
		SummaryMinLength: getEnvAsInt("SUMMARY_MIN_LENGTH", 100),

		HistoryWindow: getEnvAsInt("HISTORY_WINDOW", 5),

		TwilioAccountSID:    getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:     getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWebhookSecret: getEnv("TWILIO_WEBHOOK_SECRET", ""),
		WhatsAppFromNumber:  getEnv("WHATSAPP_FROM_NUMBER", "whatsapp:+14155238886"),

		EmergencyContactNumber: getEnv("EMERGENCY_CONTACT_NUMBER", "whatsapp:+918690165889"),
		EmergencyEmail:         getEnv("EMERGENCY_EMAIL", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Sahara Helpline"),

		ConversationStore: strings.ToLower(strings.TrimSpace(getEnv("CONVERSATION_STORE", "redis"))),
		SessionStore:      strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
