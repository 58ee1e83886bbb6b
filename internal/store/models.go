// Package store persists conversation and lead state. Postgres (lib/pq) holds
// users, messages, leads, follow-ups and lead events; Redis backs the
// message-id dedup registry.
package store

import "time"

// User is one Instagram contact known to the funnel.
type User struct {
	ID              int64
	ContactID       string
	InstagramUserID string
	DisplayName     string
	CreatedAt       time.Time
}

// Direction of a stored message.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one stored exchange line.
type Message struct {
	ID        int64
	UserID    int64
	Direction string
	Text      string
	Path      string // which response strategy produced an outbound message
	MessageID string // ManyChat message id, inbound only
	CreatedAt time.Time
}

// Lead is the per-user sales profile, updated on every inbound message.
type Lead struct {
	UserID        int64
	Intent        string
	Score         int
	Stage         string
	LastMessageAt time.Time
	UpdatedAt     time.Time
}

// FollowUp is the single pending follow-up slot for a user.
type FollowUp struct {
	UserID       int64
	ScheduledFor time.Time
	Draft        string
	Reason       string
}
