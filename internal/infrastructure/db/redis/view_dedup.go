package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewDeduper records counted views in Redis so the cooldown survives restarts
// and is shared by every API instance.
// Key format: views:<project_id>:<viewer_key>, expiring after the cooldown.
type ViewDeduper struct {
	client   *redis.Client
	cooldown time.Duration
}

// NewViewDeduper creates a ViewDeduper wrapping the given Redis client.
func NewViewDeduper(client *redis.Client, cooldown time.Duration) *ViewDeduper {
	return &ViewDeduper{client: client, cooldown: cooldown}
}

// Admit atomically claims the key. Only the first view inside the cooldown
// succeeds.
func (d *ViewDeduper) Admit(ctx context.Context, viewerKey, projectID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(viewerKey, projectID), "1", d.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("view dedup: %w", err)
	}
	return ok, nil
}

func (d *ViewDeduper) key(viewerKey, projectID string) string {
	return fmt.Sprintf("views:%s:%s", projectID, viewerKey)
}
