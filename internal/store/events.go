package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Lead event types written by the webhook service.
const (
	EventMessageReceived = "message_received"
	EventLeadScored      = "lead_scored"
	EventFollowUpSet     = "follow_up_scheduled"
	EventHotLeadAlerted  = "hot_lead_alerted"
)

// EventRepository appends an audit trail of lead events.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends one event. Details are stored as JSON.
func (r *EventRepository) Insert(ctx context.Context, userID int64, eventType string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal event details: %w", err)
	}

	const query = `
		INSERT INTO lead_events (id, user_id, event_type, details)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), userID, eventType, payload); err != nil {
		return fmt.Errorf("insert lead event %s: %w", eventType, err)
	}
	return nil
}
