package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LeadRepository maintains the per-user lead profile.
type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Upsert overwrites the lead profile with the latest derived signals.
func (r *LeadRepository) Upsert(ctx context.Context, userID int64, intent string, score int, stage string, lastMessageAt time.Time) error {
	const query = `
		INSERT INTO leads (user_id, intent, score, stage, last_message_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			intent          = EXCLUDED.intent,
			score           = EXCLUDED.score,
			stage           = EXCLUDED.stage,
			last_message_at = EXCLUDED.last_message_at,
			updated_at      = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID, intent, score, stage, lastMessageAt); err != nil {
		return fmt.Errorf("upsert lead for user %d: %w", userID, err)
	}
	return nil
}

// Get loads the lead profile for a user.
func (r *LeadRepository) Get(ctx context.Context, userID int64) (*Lead, error) {
	const query = `
		SELECT user_id, intent, score, stage, last_message_at, updated_at
		FROM leads
		WHERE user_id = $1`

	var l Lead
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&l.UserID, &l.Intent, &l.Score, &l.Stage, &l.LastMessageAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load lead for user %d: %w", userID, err)
	}
	return &l, nil
}
