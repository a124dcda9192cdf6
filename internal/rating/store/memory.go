// Package store persists ratings and watchlists.
//
// Ratings live in memory or PostgreSQL (pgx). Watchlists live in memory or
// in Redis sorted sets scored by the time the movie was added.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"microflix/internal/rating/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

// Error Contract:
// - FindByUserAndMovie and Delete return sentinel.ErrNotFound when no rating exists
// - Watchlist operations are idempotent and never return ErrNotFound
// - Infrastructure failures are returned wrapped with context

type ratingKey struct {
	user  domain.UserID
	movie domain.MovieID
}

// InMemoryRatingStore keeps ratings in a map for tests and local runs.
type InMemoryRatingStore struct {
	mu      sync.RWMutex
	nextID  int64
	ratings map[ratingKey]*models.Rating
}

func NewInMemoryRatingStore() *InMemoryRatingStore {
	return &InMemoryRatingStore{
		ratings: make(map[ratingKey]*models.Rating),
	}
}

// Save inserts the rating or replaces the score of the existing rating for
// the same user and movie. ID and CreatedAt of an existing rating are kept.
func (s *InMemoryRatingStore) Save(_ context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey{user: rating.UserID, movie: rating.MovieID}
	if existing, ok := s.ratings[key]; ok {
		rating.ID = existing.ID
		rating.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		rating.ID = s.nextID
	}
	stored := *rating
	s.ratings[key] = &stored
	return nil
}

func (s *InMemoryRatingStore) FindByUserAndMovie(_ context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[ratingKey{user: userID, movie: movieID}]
	if !ok {
		return nil, fmt.Errorf("rating for movie %s: %w", movieID, sentinel.ErrNotFound)
	}
	out := *r
	return &out, nil
}

func (s *InMemoryRatingStore) Delete(_ context.Context, userID domain.UserID, movieID domain.MovieID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ratingKey{user: userID, movie: movieID}
	if _, ok := s.ratings[key]; !ok {
		return fmt.Errorf("rating for movie %s: %w", movieID, sentinel.ErrNotFound)
	}
	delete(s.ratings, key)
	return nil
}

func (s *InMemoryRatingStore) ListByMovie(_ context.Context, movieID domain.MovieID) ([]*models.Rating, error) {
	return s.list(func(r *models.Rating) bool { return r.MovieID == movieID }), nil
}

func (s *InMemoryRatingStore) ListByUser(_ context.Context, userID domain.UserID) ([]*models.Rating, error) {
	return s.list(func(r *models.Rating) bool { return r.UserID == userID }), nil
}

// Summary returns the mean of RatingTimesTen and the number of ratings.
func (s *InMemoryRatingStore) Summary(_ context.Context, movieID domain.MovieID) (float64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		sum   int64
		count int64
	)
	for _, r := range s.ratings {
		if r.MovieID == movieID {
			sum += int64(r.RatingTimesTen)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (s *InMemoryRatingStore) list(match func(*models.Rating) bool) []*models.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Rating, 0)
	for _, r := range s.ratings {
		if match(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InMemoryWatchlistStore keeps watchlists in nested maps.
type InMemoryWatchlistStore struct {
	mu    sync.RWMutex
	items map[domain.UserID]map[domain.MovieID]time.Time
}

func NewInMemoryWatchlistStore() *InMemoryWatchlistStore {
	return &InMemoryWatchlistStore{
		items: make(map[domain.UserID]map[domain.MovieID]time.Time),
	}
}

// Add keeps the original AddedAt when the movie is already listed.
func (s *InMemoryWatchlistStore) Add(_ context.Context, userID domain.UserID, movieID domain.MovieID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.items[userID]
	if !ok {
		list = make(map[domain.MovieID]time.Time)
		s.items[userID] = list
	}
	if _, exists := list[movieID]; !exists {
		list[movieID] = at
	}
	return nil
}

func (s *InMemoryWatchlistStore) Remove(_ context.Context, userID domain.UserID, movieID domain.MovieID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[userID], movieID)
	return nil
}

func (s *InMemoryWatchlistStore) Contains(_ context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[userID][movieID]
	return ok, nil
}

// List returns the watchlist newest first.
func (s *InMemoryWatchlistStore) List(_ context.Context, userID domain.UserID) ([]models.WatchlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WatchlistItem, 0, len(s.items[userID]))
	for movieID, at := range s.items[userID] {
		out = append(out, models.WatchlistItem{UserID: userID, MovieID: movieID, AddedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].MovieID > out[j].MovieID
		}
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out, nil
}
