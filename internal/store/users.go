package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UserRepository resolves ManyChat contacts to stored users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user for a contact id, creating the row on first
// contact. Display name and Instagram user id are refreshed when ManyChat
// sends newer values.
func (r *UserRepository) GetOrCreate(ctx context.Context, contactID, instagramUserID, displayName string) (*User, error) {
	const query = `
		INSERT INTO users (contact_id, instagram_user_id, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (contact_id) DO UPDATE SET
			instagram_user_id = COALESCE(NULLIF(EXCLUDED.instagram_user_id, ''), users.instagram_user_id),
			display_name      = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name)
		RETURNING id, contact_id, instagram_user_id, display_name, created_at`

	var u User
	err := r.db.QueryRowContext(ctx, query, contactID, instagramUserID, displayName).Scan(
		&u.ID, &u.ContactID, &u.InstagramUserID, &u.DisplayName, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create user %s: %w", contactID, err)
	}
	return &u, nil
}
