package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/saharalabs/helpline/internal/observability/metrics"
	"github.com/saharalabs/helpline/internal/topic"
	"github.com/saharalabs/helpline/pkg/logging"
)

const (
	resetCommand = "new session"

	topicMenu = "Please reply with one of the following:\n" +
		"👉 mental health\n👉 domestic violence\n👉 career guidance\n👉 emergency contact"
	newSessionReply   = "Starting a new session. What do you need help with today?\n" + topicMenu
	unknownTopicReply = "I'm not sure what you need help with.\n" + topicMenu
	topicAckTemplate  = "Thanks! You selected *%s*. You can now tell me your concern."
	degradedReply     = "Sorry, I couldn't come up with a reply just now. Please send your message again."

	sentimentFallback = "NEUTRAL"

	defaultHistoryWindow = 5
	defaultSummaryMax    = 400
	defaultSummaryMin    = 100

	completionTimeout = 30 * time.Second
	alertTimeout      = 5 * time.Second
)

// SentimentAnalyzer labels the sentiment of one message.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Summarizer shortens text to the given length bounds.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// TopicClassifier maps a free-text message to a topic, or topic.Unknown.
type TopicClassifier interface {
	Classify(ctx context.Context, message string) topic.Topic
}

// EmergencyAlerter notifies support staff that a user needs urgent help.
type EmergencyAlerter interface {
	SendEmergencyAlert(ctx context.Context, userID string) error
}

// Engine is the per-user topic state machine. It decides, for each inbound
// message, whether to reset, classify, or converse, and composes the final
// sentiment-annotated reply.
type Engine struct {
	sessions   TopicStore
	store      Store
	classifier TopicClassifier
	llm        LLMClient
	sentiment  SentimentAnalyzer
	summarizer Summarizer
	messenger  ReplyMessenger
	alerts     EmergencyAlerter
	metrics    *metrics.RoutingMetrics
	logger     *logging.Logger
	tracer     trace.Tracer

	from          string
	historyWindow int
	summaryMax    int
	summaryMin    int
}

// EngineConfig wires the engine's collaborators. Sessions, Store, Classifier,
// LLM, and Messenger are required; the rest degrade gracefully when absent.
type EngineConfig struct {
	Sessions   TopicStore
	Store      Store
	Classifier TopicClassifier
	LLM        LLMClient
	Sentiment  SentimentAnalyzer
	Summarizer Summarizer
	Messenger  ReplyMessenger
	Alerts     EmergencyAlerter
	Metrics    *metrics.RoutingMetrics
	Logger     *logging.Logger

	// From is the transport address replies are sent from.
	From          string
	HistoryWindow int
	SummaryMax    int
	SummaryMin    int
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Sessions == nil {
		panic("conversation: topic store cannot be nil")
	}
	if cfg.Store == nil {
		panic("conversation: conversation store cannot be nil")
	}
	if cfg.Classifier == nil {
		panic("conversation: classifier cannot be nil")
	}
	if cfg.LLM == nil {
		panic("conversation: llm client cannot be nil")
	}
	if cfg.Messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	if cfg.SummaryMax <= 0 {
		cfg.SummaryMax = defaultSummaryMax
	}
	if cfg.SummaryMin <= 0 {
		cfg.SummaryMin = defaultSummaryMin
	}

	return &Engine{
		sessions:      cfg.Sessions,
		store:         cfg.Store,
		classifier:    cfg.Classifier,
		llm:           cfg.LLM,
		sentiment:     cfg.Sentiment,
		summarizer:    cfg.Summarizer,
		messenger:     cfg.Messenger,
		alerts:        cfg.Alerts,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		tracer:        otel.Tracer("helpline.internal.conversation.engine"),
		from:          cfg.From,
		historyWindow: cfg.HistoryWindow,
		summaryMax:    cfg.SummaryMax,
		summaryMin:    cfg.SummaryMin,
	}
}

// HandleMessage runs one inbound message through the state machine. The
// caller guarantees the body is non-blank and that messages from the same
// user are not interleaved.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) error {
	ctx, span := e.tracer.Start(ctx, "conversation.handle_message")
	defer span.End()
	span.SetAttributes(attribute.String("helpline.user_id", msg.UserID))

	body := strings.TrimSpace(msg.Body)
	if strings.EqualFold(body, resetCommand) {
		return e.handleReset(ctx, msg)
	}

	active, state, err := e.sessions.Get(ctx, msg.UserID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to load session: %w", err)
	}
	if state != SessionActive {
		return e.handleClassification(ctx, msg, body)
	}
	return e.handleConversation(ctx, msg, body, active)
}

func (e *Engine) handleReset(ctx context.Context, msg InboundMessage) error {
	if err := e.store.Reset(ctx, msg.UserID); err != nil {
		e.logger.Error("failed to delete conversation log on reset", "error", err, "user_id", msg.UserID)
		return err
	}
	if err := e.sessions.Clear(ctx, msg.UserID); err != nil {
		e.logger.Error("failed to clear session topic on reset", "error", err, "user_id", msg.UserID)
		return err
	}
	e.logger.Info("session reset", "user_id", msg.UserID)
	return e.send(ctx, msg, newSessionReply, "menu")
}

func (e *Engine) handleClassification(ctx context.Context, msg InboundMessage, body string) error {
	detected := e.classifier.Classify(ctx, body)
	e.metrics.ObserveClassification(string(detected))

	if !detected.IsValid() {
		e.logger.Info("no valid topic matched", "user_id", msg.UserID)
		return e.send(ctx, msg, unknownTopicReply, "menu")
	}

	if err := e.sessions.Set(ctx, msg.UserID, detected); err != nil {
		e.logger.Error("failed to persist session topic", "error", err, "user_id", msg.UserID)
		return err
	}
	e.logger.Info("topic selected", "user_id", msg.UserID, "topic", string(detected))

	if detected == topic.EmergencyContact {
		e.fireEmergencyAlert(ctx, msg.UserID)
	}
	return e.send(ctx, msg, fmt.Sprintf(topicAckTemplate, string(detected)), "ack")
}

func (e *Engine) handleConversation(ctx context.Context, msg InboundMessage, body string, active topic.Topic) error {
	// Fires on every message while the topic stays active, not just the first.
	if active == topic.EmergencyContact {
		e.fireEmergencyAlert(ctx, msg.UserID)
	}

	history, err := e.store.RecentWindow(ctx, msg.UserID, e.historyWindow)
	if err != nil {
		return fmt.Errorf("conversation: failed to load history: %w", err)
	}

	messages := make([]ChatMessage, 0, 2*len(history)+1)
	for _, rec := range history {
		messages = append(messages,
			ChatMessage{Role: ChatRoleUser, Content: rec.UserInput},
			ChatMessage{Role: ChatRoleAssistant, Content: rec.AssistantResponse},
		)
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: body})

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	resp, err := e.llm.Complete(callCtx, LLMRequest{
		System:   []string{topic.Persona(active)},
		Messages: messages,
	})
	if err != nil {
		// The exchange is dropped rather than recorded with an empty response.
		e.logger.Error("completion failed", "error", err, "user_id", msg.UserID, "topic", string(active))
		return e.send(ctx, msg, degradedReply, "degraded")
	}
	reply := resp.Text

	label := sentimentFallback
	if e.sentiment != nil {
		if detected, err := e.sentiment.Analyze(ctx, body); err != nil {
			e.logger.Warn("sentiment analysis failed, using fallback label", "error", err, "user_id", msg.UserID)
		} else {
			label = detected
		}
	}

	if err := e.store.Append(ctx, msg.UserID, Record{
		UserInput:         body,
		AssistantResponse: reply,
		Sentiment:         label,
		CreatedAt:         time.Now().UTC(),
	}); err != nil {
		e.logger.Error("failed to append conversation record", "error", err, "user_id", msg.UserID)
		return err
	}

	summary := reply
	if e.summarizer != nil {
		if s, err := e.summarizer.Summarize(ctx, reply, e.summaryMax, e.summaryMin); err != nil {
			e.logger.Warn("summarization failed, sending full reply", "error", err, "user_id", msg.UserID)
		} else if strings.TrimSpace(s) != "" {
			summary = s
		}
	}

	final := fmt.Sprintf("%s\n(Sentiment: %s)", summary, label)
	return e.send(ctx, msg, final, "conversation")
}

func (e *Engine) fireEmergencyAlert(ctx context.Context, userID string) {
	if e.alerts == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(ctx, alertTimeout)
	defer cancel()
	if err := e.alerts.SendEmergencyAlert(alertCtx, userID); err != nil {
		e.logger.Error("failed to send emergency alert", "error", err, "user_id", userID)
		e.metrics.ObserveAlert("failed")
		return
	}
	e.metrics.ObserveAlert("sent")
}

func (e *Engine) send(ctx context.Context, msg InboundMessage, body, kind string) error {
	err := e.messenger.SendReply(ctx, OutboundReply{
		To:   msg.ReplyTo,
		From: e.from,
		Body: body,
	})
	if err != nil {
		e.metrics.ObserveReply(kind, "failed")
		return fmt.Errorf("conversation: failed to send reply: %w", err)
	}
	e.metrics.ObserveReply(kind, "sent")
	return nil
}
