package presence

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:"

// RedisTracker keeps presence sets in Redis so membership changes made by any
// process are visible to every process serving the same conversation.
// SADD/SREM are atomic and idempotent, which gives the tracker its set
// semantics for free.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker connects to Redis and verifies connectivity.
func NewRedisTracker(url string) (*RedisTracker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("presence: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("presence: redis ping: %w", err)
	}
	return &RedisTracker{client: client}, nil
}

var _ Tracker = (*RedisTracker)(nil)

// Join adds the account to the conversation's online set.
func (t *RedisTracker) Join(ctx context.Context, conversationName, accountID string) error {
	return t.client.SAdd(ctx, keyPrefix+conversationName, accountID).Err()
}

// Leave removes the account from the conversation's online set.
func (t *RedisTracker) Leave(ctx context.Context, conversationName, accountID string) error {
	return t.client.SRem(ctx, keyPrefix+conversationName, accountID).Err()
}

// Online lists the accounts currently in the conversation's online set.
func (t *RedisTracker) Online(ctx context.Context, conversationName string) ([]string, error) {
	return t.client.SMembers(ctx, keyPrefix+conversationName).Result()
}

// Close releases the underlying Redis client.
func (t *RedisTracker) Close() error {
	return t.client.Close()
}
