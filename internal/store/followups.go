package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FollowUpRepository maintains the single pending follow-up per user. A new
// inbound message reschedules whatever was pending.
type FollowUpRepository struct {
	db *sql.DB
}

func NewFollowUpRepository(db *sql.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// Upsert replaces the user's pending follow-up slot.
func (r *FollowUpRepository) Upsert(ctx context.Context, userID int64, scheduledFor time.Time, draft, reason string) error {
	const query = `
		INSERT INTO follow_ups (user_id, scheduled_for, draft, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			scheduled_for = EXCLUDED.scheduled_for,
			draft         = EXCLUDED.draft,
			reason        = EXCLUDED.reason`

	if _, err := r.db.ExecContext(ctx, query, userID, scheduledFor, draft, reason); err != nil {
		return fmt.Errorf("upsert follow-up for user %d: %w", userID, err)
	}
	return nil
}

// Due returns follow-ups scheduled at or before now.
func (r *FollowUpRepository) Due(ctx context.Context, now time.Time, limit int) ([]FollowUp, error) {
	const query = `
		SELECT user_id, scheduled_for, draft, reason
		FROM follow_ups
		WHERE scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("load due follow-ups: %w", err)
	}
	defer rows.Close()

	var out []FollowUp
	for rows.Next() {
		var f FollowUp
		if err := rows.Scan(&f.UserID, &f.ScheduledFor, &f.Draft, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan follow-up row: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow-up rows: %w", err)
	}
	return out, nil
}
