package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageRepository appends conversation rows and reads recent history.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// AppendInbound stores an inbound user message.
func (r *MessageRepository) AppendInbound(ctx context.Context, userID int64, text, messageID string) error {
	const query = `
		INSERT INTO messages (user_id, direction, text, message_id)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, userID, DirectionInbound, text, messageID); err != nil {
		return fmt.Errorf("append inbound message: %w", err)
	}
	return nil
}

// AppendOutbound stores the reply along with the path that produced it.
func (r *MessageRepository) AppendOutbound(ctx context.Context, userID int64, text, path string) error {
	const query = `
		INSERT INTO messages (user_id, direction, text, path)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, userID, DirectionOutbound, text, path); err != nil {
		return fmt.Errorf("append outbound message: %w", err)
	}
	return nil
}

// RecentHistory returns the newest rows for a user, oldest first, capped at
// limit. It feeds the agent pipeline's memory stage.
func (r *MessageRepository) RecentHistory(ctx context.Context, userID int64, limit int) ([]Message, error) {
	const query = `
		SELECT id, user_id, direction, text, created_at
		FROM (
			SELECT id, user_id, direction, text, created_at
			FROM messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Direction, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}
