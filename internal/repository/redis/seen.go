package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "webhook:seen:"

// SeenEventStore implements repository.SeenEventStore using Redis SETNX with
// a TTL. The provider retries deliveries for at most a few days, so entries
// only need to outlive the retry window, not the order history.
type SeenEventStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenEventStore creates a new Redis-backed seen-event store.
func NewSeenEventStore(client *redis.Client, ttl time.Duration) *SeenEventStore {
	return &SeenEventStore{client: client, ttl: ttl}
}

// MarkSeen records an event id, reporting whether it was the first sighting.
func (s *SeenEventStore) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	first, err := s.client.SetNX(ctx, seenKeyPrefix+eventID, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx seen event: %w", err)
	}
	return first, nil
}
