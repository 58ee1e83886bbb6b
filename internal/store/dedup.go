package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupRegistry remembers processed message ids so ManyChat redeliveries are
// answered once. Entries expire after 24 hours.
type DedupRegistry struct {
	client *redis.Client
}

func NewDedupRegistry(client *redis.Client) *DedupRegistry {
	return &DedupRegistry{client: client}
}

// Register claims a message id. It returns true when the id was already
// claimed. A Redis failure is returned to the caller, which treats the
// message as new rather than dropping it.
func (d *DedupRegistry) Register(ctx context.Context, messageID, contactID string) (bool, error) {
	key := fmt.Sprintf("dedup:msg:%s:%s", contactID, messageID)
	claimed, err := d.client.SetNX(ctx, key, 1, dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return !claimed, nil
}
