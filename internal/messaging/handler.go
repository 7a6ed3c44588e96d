package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/saharalabs/helpline/internal/conversation"
	"github.com/saharalabs/helpline/internal/observability/metrics"
	"github.com/saharalabs/helpline/pkg/logging"
)

var webhookTracer = otel.Tracer("helpline.internal.messaging.webhook")

// emptyTwiML acknowledges a Twilio webhook without queuing an outbound
// message; replies go out through the REST API instead.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// MessageRouter runs one inbound message through the topic state machine.
type MessageRouter interface {
	HandleMessage(ctx context.Context, msg conversation.InboundMessage) error
}

// Handler translates Twilio WhatsApp webhooks into router invocations.
type Handler struct {
	webhookSecret string
	router        MessageRouter
	metrics       *metrics.RoutingMetrics
	logger        *logging.Logger
}

// NewHandler creates a new messaging handler.
func NewHandler(webhookSecret string, router MessageRouter, m *metrics.RoutingMetrics, logger *logging.Logger) *Handler {
	if router == nil {
		panic("messaging: router cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		webhookSecret: webhookSecret,
		router:        router,
		metrics:       m,
		logger:        logger,
	}
}

// WhatsAppWebhook handles POST /messaging/twilio/webhook requests. Twilio
// requires a TwiML response on every delivery, so the webhook is acknowledged
// even when handling fails.
func (h *Handler) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx, span := webhookTracer.Start(r.Context(), "messaging.twilio.webhook")
	defer span.End()
	defer func() {
		h.metrics.ObserveWebhookLatency(time.Since(started).Seconds())
	}()

	if h.webhookSecret != "" {
		if !ValidateTwilioSignature(r, h.webhookSecret, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid twilio signature")
			h.metrics.ObserveInbound("unauthorized")
			span.RecordError(errors.New("invalid twilio signature"))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		h.metrics.ObserveInbound("malformed")
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sender := strings.TrimSpace(webhook.From)
	body := strings.TrimSpace(webhook.Body)
	span.SetAttributes(
		attribute.String("helpline.twilio.message_sid", webhook.MessageSid),
		attribute.String("helpline.twilio.from", sender),
	)

	// Blank or sender-less payloads are acknowledged without touching the
	// router at all.
	if sender == "" || body == "" {
		h.metrics.ObserveInbound("skipped")
		h.ack(w)
		return
	}

	userID := UserIDFromAddress(sender)
	h.logger.Info("inbound message received", "user_id", userID, "message_sid", webhook.MessageSid)

	if err := h.router.HandleMessage(ctx, conversation.InboundMessage{
		UserID:  userID,
		ReplyTo: sender,
		Body:    webhook.Body,
	}); err != nil {
		// The transport contract still requires an acknowledgment.
		h.logger.Error("message handling failed", "error", err, "user_id", userID)
		h.metrics.ObserveInbound("failed")
		span.RecordError(err)
		h.ack(w)
		return
	}

	h.metrics.ObserveInbound("handled")
	h.ack(w)
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(emptyTwiML))
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func buildAbsoluteURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.Scheme != "" {
		return r.URL.String()
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if r.TLS == nil {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, r.URL.RequestURI())
}
