package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// readStateTTL bounds how long read markers outlive the user's last change.
const readStateTTL = 90 * 24 * time.Hour

// ReadStateStore keeps the ids of read notifications in one set per user.
// Key format: notifications:read:<user_id>
type ReadStateStore struct {
	client *redis.Client
}

func NewReadStateStore(client *redis.Client) *ReadStateStore {
	return &ReadStateStore{client: client}
}

func (s *ReadStateStore) ReadIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	members, err := s.client.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

// MarkRead adds ids to the user's read set and refreshes its expiry.
func (s *ReadStateStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, readStateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *ReadStateStore) key(userID string) string {
	return "notifications:read:" + userID
}
