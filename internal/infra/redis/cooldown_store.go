package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore keeps retry cooldowns in Redis so they survive restarts and are shared between instances.
// Each cooldown is one key whose TTL is the cooldown: fanbot:cooldown:{userID}
type CooldownStore struct {
	client *redis.Client
}

func NewCooldownStore(client *redis.Client) *CooldownStore {
	return &CooldownStore{client: client}
}

func (s *CooldownStore) StartCooldown(ctx context.Context, userID string, d time.Duration) error {
	if err := s.client.Set(ctx, s.key(userID), "1", d).Err(); err != nil {
		return fmt.Errorf("set cooldown: %w", err)
	}
	return nil
}

func (s *CooldownStore) Remaining(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("read cooldown: %w", err)
	}
	// -2 (missing) and -1 (no expiry) come back as negative durations.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *CooldownStore) key(userID string) string {
	return "fanbot:cooldown:" + userID
}
