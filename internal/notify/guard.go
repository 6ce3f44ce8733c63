package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard suppresses repeat sends by claiming per-user, per-period
// keys with SETNX. The claim is best effort; callers are expected to
// send anyway when Redis is unreachable.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(redisURL string) (*RedisGuard, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisGuard{client: redis.NewClient(opt)}, nil
}

// Acquire returns true when the key was unclaimed and is now held by
// this run, false when a previous run already claimed it.
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim notification slot: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}
