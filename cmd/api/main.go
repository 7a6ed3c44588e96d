package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/saharalabs/helpline/cmd/mainconfig"
	"github.com/saharalabs/helpline/internal/api/router"
	appconfig "github.com/saharalabs/helpline/internal/config"
	"github.com/saharalabs/helpline/internal/conversation"
	"github.com/saharalabs/helpline/internal/messaging"
	"github.com/saharalabs/helpline/internal/nlp"
	"github.com/saharalabs/helpline/internal/notify"
	"github.com/saharalabs/helpline/internal/observability/metrics"
	"github.com/saharalabs/helpline/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting helpline API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	var redisClient *redis.Client
	if cfg.ConversationStore == "redis" || cfg.SessionStore == "redis" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
	}

	var store conversation.Store
	switch cfg.ConversationStore {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		store = conversation.NewPostgresStore(db)
	case "memory":
		store = conversation.NewMemoryStore()
	default:
		store = conversation.NewRedisStore(redisClient)
	}

	var sessions conversation.TopicStore
	if cfg.SessionStore == "redis" {
		sessions = conversation.NewRedisTopicStore(redisClient)
	} else {
		sessions = conversation.NewMemoryTopicStore()
	}

	var bedrockClient *bedrockruntime.Client
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrockClient = bedrockruntime.NewFromConfig(awsCfg)
	}

	llmSelection := conversation.LLMSelectionConfig{
		Preference:     cfg.LLMProvider,
		GroqAPIKey:     cfg.GroqAPIKey,
		GroqBaseURL:    cfg.GroqBaseURL,
		GroqModel:      cfg.GroqModel,
		BedrockModelID: cfg.BedrockModelID,
	}
	if bedrockClient != nil {
		llmSelection.Bedrock = bedrockClient
	}
	llm, provider, reason := conversation.BuildLLMClient(llmSelection, logger)
	if llm == nil {
		logger.Error("no LLM provider available", "reason", reason)
		os.Exit(1)
	}
	logger.Info("LLM provider selected", "provider", provider)

	routingMetrics := metrics.NewRoutingMetrics(nil)
	messenger := messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.WhatsAppFromNumber, logger)

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var email notify.EmailSender
	if emailSender != nil {
		email = emailSender
	}
	alerter := notify.NewEmergencyAlerter(messenger, email, notify.AlerterConfig{
		To:      cfg.EmergencyContactNumber,
		From:    cfg.WhatsAppFromNumber,
		EmailTo: cfg.EmergencyEmail,
	}, logger)

	engine := conversation.NewEngine(conversation.EngineConfig{
		Sessions:      sessions,
		Store:         store,
		Classifier:    conversation.NewClassifier(llm, logger),
		LLM:           llm,
		Sentiment:     nlp.NewSentimentClient("", cfg.HFAPIToken, cfg.HFSentimentModel, logger),
		Summarizer:    nlp.NewSummaryClient("", cfg.HFAPIToken, cfg.HFSummaryModel, logger),
		Messenger:     messenger,
		Alerts:        alerter,
		Metrics:       routingMetrics,
		Logger:        logger,
		From:          cfg.WhatsAppFromNumber,
		HistoryWindow: cfg.HistoryWindow,
		SummaryMax:    cfg.SummaryMaxLength,
		SummaryMin:    cfg.SummaryMinLength,
	})

	messagingHandler := messaging.NewHandler(cfg.TwilioWebhookSecret, engine, routingMetrics, logger)

	r := router.New(&router.Config{
		MessagingHandler: messagingHandler,
		MetricsHandler:   promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
