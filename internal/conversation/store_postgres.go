package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists conversation logs to PostgreSQL for deployments that
// need durability beyond Redis.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("conversation: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, userID string, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_records (
			id, user_id, user_input, assistant_response, sentiment_label, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, rec.UserInput, rec.AssistantResponse, rec.Sentiment, createdAt)
	if err != nil {
		return fmt.Errorf("conversation: failed to insert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentWindow(ctx context.Context, userID string, maxMessages int) ([]Record, error) {
	if maxMessages <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_input, assistant_response, sentiment_label, created_at
		FROM conversation_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, maxMessages)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to read log: %w", err)
	}
	defer rows.Close()

	var newestFirst []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UserInput, &rec.AssistantResponse, &rec.Sentiment, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: failed to scan record: %w", err)
		}
		newestFirst = append(newestFirst, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: failed to iterate log: %w", err)
	}

	// Rows arrive newest first; the window contract is original arrival order.
	records := make([]Record, len(newestFirst))
	for i, rec := range newestFirst {
		records[len(newestFirst)-1-i] = rec
	}
	return records, nil
}

func (s *PostgresStore) Reset(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_records WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("conversation: failed to reset log: %w", err)
	}
	return nil
}
