package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.HistoryWindow != 5 {
		t.Errorf("expected default history window 5, got %d", cfg.HistoryWindow)
	}
	if cfg.SummaryMaxLength != 400 || cfg.SummaryMinLength != 100 {
		t.Errorf("unexpected summary bounds: max=%d min=%d", cfg.SummaryMaxLength, cfg.SummaryMinLength)
	}
	if cfg.ConversationStore != "redis" {
		t.Errorf("expected default conversation store redis, got %s", cfg.ConversationStore)
	}
	if cfg.LLMProvider != "auto" {
		t.Errorf("expected default llm provider auto, got %s", cfg.LLMProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HISTORY_WINDOW", "8")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LLM_PROVIDER", " Bedrock ")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.HistoryWindow != 8 {
		t.Errorf("expected history window 8, got %d", cfg.HistoryWindow)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis TLS enabled")
	}
	if cfg.LLMProvider != "bedrock" {
		t.Errorf("expected normalized provider bedrock, got %s", cfg.LLMProvider)
	}
}
