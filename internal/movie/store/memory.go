// Package store persists movies in memory or in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"microflix/internal/movie/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

// Error Contract:
// - FindByID returns sentinel.ErrNotFound when the movie does not exist
// - Create returns sentinel.ErrConflict when tmdbId is already taken
// - Infrastructure failures are returned wrapped with context

// InMemoryMovieStore keeps movies in a map for tests and local runs.
type InMemoryMovieStore struct {
	mu     sync.RWMutex
	nextID int64
	movies map[domain.MovieID]*models.Movie
}

func NewInMemoryMovieStore() *InMemoryMovieStore {
	return &InMemoryMovieStore{
		movies: make(map[domain.MovieID]*models.Movie),
	}
}

func (s *InMemoryMovieStore) Create(_ context.Context, movie *models.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if movie.TmdbID != nil {
		for _, existing := range s.movies {
			if existing.TmdbID != nil && *existing.TmdbID == *movie.TmdbID {
				return fmt.Errorf("tmdb id %d already imported: %w", *movie.TmdbID, sentinel.ErrConflict)
			}
		}
	}
	s.nextID++
	movie.ID = domain.MovieID(s.nextID)
	stored := *movie
	s.movies[movie.ID] = &stored
	return nil
}

func (s *InMemoryMovieStore) FindByID(_ context.Context, id domain.MovieID) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	movie, ok := s.movies[id]
	if !ok {
		return nil, fmt.Errorf("movie %s: %w", id, sentinel.ErrNotFound)
	}
	out := *movie
	return &out, nil
}

// Search returns matching movies, newest first.
func (s *InMemoryMovieStore) Search(_ context.Context, filter models.Filter) ([]*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Movie, 0, len(s.movies))
	for _, movie := range s.movies {
		if filter.Matches(movie) {
			m := *movie
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
