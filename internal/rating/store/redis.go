package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"microflix/internal/rating/models"
	"microflix/pkg/domain"
)

const watchlistKeyPrefix = "microflix:watchlist:"

// RedisWatchlistStore keeps one sorted set per user. Members are movie ids,
// scores are the unix milliseconds at which the movie was added.
type RedisWatchlistStore struct {
	client *redis.Client
}

func NewRedisWatchlistStore(client *redis.Client) *RedisWatchlistStore {
	return &RedisWatchlistStore{client: client}
}

func watchlistKey(userID domain.UserID) string {
	return watchlistKeyPrefix + userID.String()
}

// Add uses ZADD NX so a repeated add keeps the original AddedAt.
func (s *RedisWatchlistStore) Add(ctx context.Context, userID domain.UserID, movieID domain.MovieID, at time.Time) error {
	err := s.client.ZAddNX(ctx, watchlistKey(userID), redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: movieID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("watchlist add: %w", err)
	}
	return nil
}

func (s *RedisWatchlistStore) Remove(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	if err := s.client.ZRem(ctx, watchlistKey(userID), movieID.String()).Err(); err != nil {
		return fmt.Errorf("watchlist remove: %w", err)
	}
	return nil
}

func (s *RedisWatchlistStore) Contains(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error) {
	err := s.client.ZScore(ctx, watchlistKey(userID), movieID.String()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("watchlist lookup: %w", err)
	}
	return true, nil
}

// List returns the watchlist newest first.
func (s *RedisWatchlistStore) List(ctx context.Context, userID domain.UserID) ([]models.WatchlistItem, error) {
	entries, err := s.client.ZRevRangeWithScores(ctx, watchlistKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("watchlist list: %w", err)
	}
	out := make([]models.WatchlistItem, 0, len(entries))
	for _, z := range entries {
		member, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("watchlist member has unexpected type %T", z.Member)
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("watchlist member %q: %w", member, err)
		}
		out = append(out, models.WatchlistItem{
			UserID:  userID,
			MovieID: domain.MovieID(id),
			AddedAt: time.UnixMilli(int64(z.Score)).UTC(),
		})
	}
	return out, nil
}
