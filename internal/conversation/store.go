package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store is the per-user append-only conversation log.
type Store interface {
	// Append adds one record to the user's log, creating the log if absent.
	Append(ctx context.Context, userID string, rec Record) error
	// RecentWindow returns up to maxMessages of the most recent records in
	// arrival order. A user with no log yields an empty slice, not an error.
	RecentWindow(ctx context.Context, userID string, maxMessages int) ([]Record, error)
	// Reset deletes the user's entire log. A missing log is a no-op.
	Reset(ctx context.Context, userID string) error
}

// RedisStore keeps each user's log in a Redis list so appends and windowed
// reads stay O(window) regardless of log length.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("helpline.internal.conversation.store"),
	}
}

func chatLogKey(userID string) string {
	return fmt.Sprintf("chatlog:%s", userID)
}

func (s *RedisStore) Append(ctx context.Context, userID string, rec Record) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append")
	defer span.End()

	data, err := json.Marshal(rec)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal record: %w", err)
	}
	if err := s.redis.RPush(ctx, chatLogKey(userID), data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to append record: %w", err)
	}
	return nil
}

func (s *RedisStore) RecentWindow(ctx context.Context, userID string, maxMessages int) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.recent_window")
	defer span.End()

	if maxMessages <= 0 {
		return nil, nil
	}
	raw, err := s.redis.LRange(ctx, chatLogKey(userID), int64(-maxMessages), -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to read log: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("conversation: failed to decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Reset(ctx context.Context, userID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.reset")
	defer span.End()

	if err := s.redis.Del(ctx, chatLogKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to reset log: %w", err)
	}
	return nil
}
