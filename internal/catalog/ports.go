package catalog

import (
	"context"

	"microflix/pkg/domain"
)

// Clients return a wrapped sentinel.ErrNotFound when the entity service answers
// "absent", and any other error for unexpected failures.

// MovieClient reads movies from the movie service.
type MovieClient interface {
	GetMovie(ctx context.Context, id domain.MovieID) (*Movie, error)
}

// RatingClient reads ratings and watchlist membership from the rating service.
// Personalized calls forward the caller's credential verbatim.
type RatingClient interface {
	Summary(ctx context.Context, id domain.MovieID) (RatingSummary, error)
	MyRating(ctx context.Context, id domain.MovieID, credential string) (*float64, error)
	InWatchlist(ctx context.Context, id domain.MovieID, credential string) (bool, error)
}
