package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/saharalabs/helpline/internal/topic"
)

// SessionState distinguishes a user who has never been seen from one whose
// topic entry exists but holds no topic (after a reset).
type SessionState int

const (
	SessionAbsent SessionState = iota
	SessionCleared
	SessionActive
)

// TopicStore tracks which topic is active per user. Entries are written only
// on a successful classification or an explicit reset.
type TopicStore interface {
	Get(ctx context.Context, userID string) (topic.Topic, SessionState, error)
	Set(ctx context.Context, userID string, t topic.Topic) error
	Clear(ctx context.Context, userID string) error
}

// MemoryTopicStore keeps session topics in process memory. State is lost on
// restart; use the Redis store when sessions must survive a deploy.
type MemoryTopicStore struct {
	mu     sync.RWMutex
	topics map[string]*topic.Topic
}

func NewMemoryTopicStore() *MemoryTopicStore {
	return &MemoryTopicStore{topics: make(map[string]*topic.Topic)}
}

func (s *MemoryTopicStore) Get(_ context.Context, userID string) (topic.Topic, SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.topics[userID]
	if !ok {
		return "", SessionAbsent, nil
	}
	if entry == nil {
		return "", SessionCleared, nil
	}
	return *entry, SessionActive, nil
}

func (s *MemoryTopicStore) Set(_ context.Context, userID string, t topic.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[userID] = &t
	return nil
}

func (s *MemoryTopicStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[userID] = nil
	return nil
}

// RedisTopicStore persists session topics in Redis. A cleared session is an
// empty-string value so it stays distinguishable from an absent key.
type RedisTopicStore struct {
	redis *redis.Client
}

func NewRedisTopicStore(client *redis.Client) *RedisTopicStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisTopicStore{redis: client}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session_topic:%s", userID)
}

func (s *RedisTopicStore) Get(ctx context.Context, userID string) (topic.Topic, SessionState, error) {
	value, err := s.redis.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return "", SessionAbsent, nil
	}
	if err != nil {
		return "", SessionAbsent, fmt.Errorf("conversation: failed to load session topic: %w", err)
	}
	if value == "" {
		return "", SessionCleared, nil
	}
	return topic.Topic(value), SessionActive, nil
}

func (s *RedisTopicStore) Set(ctx context.Context, userID string, t topic.Topic) error {
	if err := s.redis.Set(ctx, sessionKey(userID), string(t), 0).Err(); err != nil {
		return fmt.Errorf("conversation: failed to persist session topic: %w", err)
	}
	return nil
}

func (s *RedisTopicStore) Clear(ctx context.Context, userID string) error {
	if err := s.redis.Set(ctx, sessionKey(userID), "", 0).Err(); err != nil {
		return fmt.Errorf("conversation: failed to clear session topic: %w", err)
	}
	return nil
}
