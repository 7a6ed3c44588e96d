package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/saharalabs/helpline/internal/observability/metrics"
	"github.com/saharalabs/helpline/internal/topic"
)

type fakeClassifier struct {
	result topic.Topic
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string) topic.Topic {
	f.calls++
	return f.result
}

type fakeSentiment struct {
	label string
	err   error
}

func (f *fakeSentiment) Analyze(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

type fakeSummarizer struct {
	summary string
	err     error
	lastIn  string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	f.lastIn = text
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type fakeMessenger struct {
	sent []OutboundReply
	err  error
}

func (f *fakeMessenger) SendReply(_ context.Context, reply OutboundReply) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, reply)
	return nil
}

func (f *fakeMessenger) lastBody(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Body
}

type fakeAlerter struct {
	calls int
	err   error
}

func (f *fakeAlerter) SendEmergencyAlert(context.Context, string) error {
	f.calls++
	return f.err
}

type failingStore struct {
	Store
	appendErr error
}

func (s *failingStore) Append(ctx context.Context, userID string, rec Record) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.Store.Append(ctx, userID, rec)
}

type engineFixture struct {
	engine     *Engine
	sessions   TopicStore
	store      Store
	classifier *fakeClassifier
	llm        *stubLLM
	sentiment  *fakeSentiment
	summarizer *fakeSummarizer
	messenger  *fakeMessenger
	alerts     *fakeAlerter
}

func newEngineFixture(t *testing.T, mutate func(*EngineConfig)) *engineFixture {
	t.Helper()
	f := &engineFixture{
		sessions:   NewMemoryTopicStore(),
		store:      NewMemoryStore(),
		classifier: &fakeClassifier{result: topic.Unknown},
		llm:        &stubLLM{resp: LLMResponse{Text: "completion text"}},
		sentiment:  &fakeSentiment{label: "POSITIVE"},
		summarizer: &fakeSummarizer{summary: "summary text"},
		messenger:  &fakeMessenger{},
		alerts:     &fakeAlerter{},
	}
	cfg := EngineConfig{
		Sessions:   f.sessions,
		Store:      f.store,
		Classifier: f.classifier,
		LLM:        f.llm,
		Sentiment:  f.sentiment,
		Summarizer: f.summarizer,
		Messenger:  f.messenger,
		Alerts:     f.alerts,
		Metrics:    metrics.NewRoutingMetrics(prometheus.NewRegistry()),
		From:       "whatsapp:+14155238886",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	f.engine = NewEngine(cfg)
	return f
}

func inbound(body string) InboundMessage {
	return InboundMessage{
		UserID:  "+15550001111",
		ReplyTo: "whatsapp:+15550001111",
		Body:    body,
	}
}

func TestFirstContactUnknownTopicRepromptsWithoutAppending(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("I like cats")))

	require.Equal(t, 1, f.classifier.calls)
	require.Contains(t, f.messenger.lastBody(t), "I'm not sure what you need help with.")
	require.Contains(t, f.messenger.lastBody(t), "👉 mental health")

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Empty(t, window, "no record until a valid topic is established")

	// A failed classification must not create a session entry.
	_, state, err := f.sessions.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, SessionAbsent, state)
}

func TestSuccessfulClassificationActivatesTopic(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.classifier.result = topic.MentalHealth
	ctx := context.Background()

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("mental health")))

	active, state, err := f.sessions.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, SessionActive, state)
	require.Equal(t, topic.MentalHealth, active)
	require.Equal(t, "Thanks! You selected *mental health*. You can now tell me your concern.", f.messenger.lastBody(t))
	require.Zero(t, f.alerts.calls)

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Empty(t, window, "classification turn does not append an exchange")
}

func TestEmergencyClassificationFiresAlert(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.classifier.result = topic.EmergencyContact

	require.NoError(t, f.engine.HandleMessage(context.Background(), inbound("please help, urgent!")))

	require.Equal(t, 1, f.alerts.calls)
	require.Contains(t, f.messenger.lastBody(t), "*emergency contact*")
}

func TestResetClearsStateRegardlessOfCase(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.CareerGuidance))
	require.NoError(t, f.store.Append(ctx, "+15550001111", Record{UserInput: "old", AssistantResponse: "old"}))

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("  NEW Session ")))

	_, state, err := f.sessions.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, SessionCleared, state)

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Empty(t, window)

	require.Contains(t, f.messenger.lastBody(t), "Starting a new session.")
	require.Zero(t, f.classifier.calls, "reset never classifies")
}

func TestActiveTopicConversationFlow(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.MentalHealth))
	f.llm.resp = LLMResponse{Text: "a long empathetic reply"}
	f.sentiment.label = "NEGATIVE"
	f.summarizer.summary = "short empathetic reply"

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("I feel sad")))

	// The completion request carries the persona plus the current message.
	require.Equal(t, []string{topic.Persona(topic.MentalHealth)}, f.llm.lastReq.System)
	require.Len(t, f.llm.lastReq.Messages, 1)
	require.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "I feel sad"}, f.llm.lastReq.Messages[0])

	// The summarizer sees the raw completion, not the annotated reply.
	require.Equal(t, "a long empathetic reply", f.summarizer.lastIn)
	require.Equal(t, "short empathetic reply\n(Sentiment: NEGATIVE)", f.messenger.lastBody(t))

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "I feel sad", window[0].UserInput)
	require.Equal(t, "a long empathetic reply", window[0].AssistantResponse)
	require.Equal(t, "NEGATIVE", window[0].Sentiment)

	// Topic remains active after the exchange.
	active, state, err := f.sessions.Get(ctx, "+15550001111")
	require.NoError(t, err)
	require.Equal(t, SessionActive, state)
	require.Equal(t, topic.MentalHealth, active)
}

func TestHistoryWindowRendersAlternatingTurns(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.CareerGuidance))
	for i := 0; i < 7; i++ {
		require.NoError(t, f.store.Append(ctx, "+15550001111", Record{
			UserInput:         fmt.Sprintf("q%d", i),
			AssistantResponse: fmt.Sprintf("a%d", i),
		}))
	}

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("what next?")))

	// 5 history pairs plus the current message.
	msgs := f.llm.lastReq.Messages
	require.Len(t, msgs, 11)
	require.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "q2"}, msgs[0])
	require.Equal(t, ChatMessage{Role: ChatRoleAssistant, Content: "a2"}, msgs[1])
	require.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "q6"}, msgs[8])
	require.Equal(t, ChatMessage{Role: ChatRoleAssistant, Content: "a6"}, msgs[9])
	require.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "what next?"}, msgs[10])
}

func TestEmergencyTopicAlertsOnEveryMessage(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.EmergencyContact))

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("I'm trapped")))
	require.NoError(t, f.engine.HandleMessage(ctx, inbound("still here")))

	require.Equal(t, 2, f.alerts.calls)
}

func TestAlertFailureDoesNotBlockReply(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.EmergencyContact))
	f.alerts.err = errors.New("provider down")

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("help")))

	require.Equal(t, 1, f.alerts.calls)
	require.Contains(t, f.messenger.lastBody(t), "(Sentiment:")
}

func TestCompletionFailureSkipsAppend(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.MentalHealth))
	f.llm.err = errors.New("model unavailable")

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("I feel sad")))

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Empty(t, window, "failed exchanges are not recorded")
	require.Equal(t, "Sorry, I couldn't come up with a reply just now. Please send your message again.", f.messenger.lastBody(t))
}

func TestSentimentFailureFallsBackToNeutral(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.MentalHealth))
	f.sentiment.err = errors.New("model loading")

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("I feel sad")))

	require.Contains(t, f.messenger.lastBody(t), "(Sentiment: NEUTRAL)")

	window, err := f.store.RecentWindow(ctx, "+15550001111", 5)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "NEUTRAL", window[0].Sentiment)
}

func TestSummarizerFailureFallsBackToRawReply(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.MentalHealth))
	f.llm.resp = LLMResponse{Text: "the full reply"}
	f.summarizer.err = errors.New("summarizer down")
	f.sentiment.label = "POSITIVE"

	require.NoError(t, f.engine.HandleMessage(ctx, inbound("hello again")))

	require.Equal(t, "the full reply\n(Sentiment: POSITIVE)", f.messenger.lastBody(t))
}

func TestAppendFailureDropsReply(t *testing.T) {
	appendErr := errors.New("disk full")
	f := newEngineFixture(t, func(cfg *EngineConfig) {
		cfg.Store = &failingStore{Store: NewMemoryStore(), appendErr: appendErr}
	})
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, "+15550001111", topic.MentalHealth))

	err := f.engine.HandleMessage(ctx, inbound("I feel sad"))
	require.ErrorIs(t, err, appendErr)
	require.Empty(t, f.messenger.sent, "reply is dropped when the record cannot be stored")
}

func TestSendFailureSurfacesError(t *testing.T) {
	f := newEngineFixture(t, nil)
	f.messenger.err = errors.New("transport down")
	f.classifier.result = topic.MentalHealth

	err := f.engine.HandleMessage(context.Background(), inbound("mental health"))
	require.Error(t, err)
}
