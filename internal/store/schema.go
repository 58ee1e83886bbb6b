package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                BIGSERIAL PRIMARY KEY,
		contact_id        TEXT NOT NULL UNIQUE,
		instagram_user_id TEXT NOT NULL DEFAULT '',
		display_name      TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		direction  TEXT NOT NULL,
		text       TEXT NOT NULL,
		path       TEXT NOT NULL DEFAULT '',
		message_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_user_created_idx
		ON messages (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS leads (
		user_id         BIGINT PRIMARY KEY REFERENCES users(id),
		intent          TEXT NOT NULL,
		score           INT NOT NULL,
		stage           TEXT NOT NULL,
		last_message_at TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS follow_ups (
		user_id       BIGINT PRIMARY KEY REFERENCES users(id),
		scheduled_for TIMESTAMPTZ NOT NULL,
		draft         TEXT NOT NULL,
		reason        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lead_events (
		id         TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		event_type TEXT NOT NULL,
		details    JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id           BIGSERIAL PRIMARY KEY,
		brand        TEXT NOT NULL,
		name         TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		availability TEXT NOT NULL DEFAULT '',
		price_text   TEXT NOT NULL DEFAULT '',
		active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS products_brand_idx ON products (brand) WHERE active`,
}

// EnsureSchema creates missing tables. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
