package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "microflix:login-lockout:"

// RedisStore shares counters across user service replicas. Expiry is
// delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func failuresKey(key string) string { return keyPrefix + key + ":failures" }
func lockKey(key string) string     { return keyPrefix + key + ":locked" }

func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration, _ time.Time) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, failuresKey(key))
	pipe.ExpireNX(ctx, failuresKey(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until, now time.Time) error {
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, lockKey(key), until.UnixMilli(), ttl)
	pipe.Del(ctx, failuresKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lock login: %w", err)
	}
	return nil
}

func (s *RedisStore) LockedUntil(ctx context.Context, key string, now time.Time) (*time.Time, error) {
	raw, err := s.client.Get(ctx, lockKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read login lock: %w", err)
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse login lock %q: %w", raw, err)
	}
	until := time.UnixMilli(millis).UTC()
	if !now.Before(until) {
		return nil, nil
	}
	return &until, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failuresKey(key), lockKey(key)).Err(); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	return nil
}
