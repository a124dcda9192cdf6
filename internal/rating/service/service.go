// Package service implements rating and watchlist use cases.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"microflix/internal/rating/events"
	"microflix/internal/rating/models"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type RatingStore interface {
	Save(ctx context.Context, rating *models.Rating) error
	FindByUserAndMovie(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error)
	Delete(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error
	ListByMovie(ctx context.Context, movieID domain.MovieID) ([]*models.Rating, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Rating, error)
	Summary(ctx context.Context, movieID domain.MovieID) (averageTimesTen float64, count int64, err error)
}

type WatchlistStore interface {
	Add(ctx context.Context, userID domain.UserID, movieID domain.MovieID, at time.Time) error
	Remove(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error
	Contains(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error)
	List(ctx context.Context, userID domain.UserID) ([]models.WatchlistItem, error)
}

type Service struct {
	ratings   RatingStore
	watchlist WatchlistStore
	publisher events.Publisher
	logger    *slog.Logger
}

func New(ratings RatingStore, watchlist WatchlistStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		ratings:   ratings,
		watchlist: watchlist,
		publisher: publisher,
		logger:    logger,
	}
}

// RateMovie creates the caller's rating or replaces its score.
func (s *Service) RateMovie(ctx context.Context, userID domain.UserID, movieID domain.MovieID, rate float64) (*models.Rating, error) {
	now := requestcontext.Now(ctx)
	rating, err := s.ratings.FindByUserAndMovie(ctx, userID, movieID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		rating, err = models.NewRating(userID, movieID, rate, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rating")
	default:
		if err := rating.ApplyRate(rate, now); err != nil {
			return nil, err
		}
	}
	return s.save(ctx, rating)
}

// UpdateRating changes an existing rating. A missing rating is not_found.
func (s *Service) UpdateRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID, rate float64) (*models.Rating, error) {
	rating, err := s.findRating(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if err := rating.ApplyRate(rate, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	return s.save(ctx, rating)
}

func (s *Service) DeleteRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	if err := s.ratings.Delete(ctx, userID, movieID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "rating not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete rating")
	}
	s.publish(ctx, events.TypeRatingDeleted, userID, movieID, nil)
	return nil
}

// MyRating returns the caller's rating of a movie.
func (s *Service) MyRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error) {
	return s.findRating(ctx, userID, movieID)
}

// Summary never fails for a movie without ratings; it reports {null, 0}.
func (s *Service) Summary(ctx context.Context, movieID domain.MovieID) (models.Summary, error) {
	avg, count, err := s.ratings.Summary(ctx, movieID)
	if err != nil {
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to summarize ratings")
	}
	return models.NewSummary(movieID, avg, count), nil
}

func (s *Service) ListMovieRatings(ctx context.Context, movieID domain.MovieID) ([]*models.Rating, error) {
	out, err := s.ratings.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ratings")
	}
	return out, nil
}

func (s *Service) ListUserRatings(ctx context.Context, userID domain.UserID) ([]*models.Rating, error) {
	out, err := s.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ratings")
	}
	return out, nil
}

// AddToWatchlist is idempotent.
func (s *Service) AddToWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	if err := s.watchlist.Add(ctx, userID, movieID, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update watchlist")
	}
	s.publish(ctx, events.TypeWatchlistAdded, userID, movieID, nil)
	return nil
}

// RemoveFromWatchlist is idempotent.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	if err := s.watchlist.Remove(ctx, userID, movieID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update watchlist")
	}
	s.publish(ctx, events.TypeWatchlistRemoved, userID, movieID, nil)
	return nil
}

func (s *Service) Watchlist(ctx context.Context, userID domain.UserID) ([]models.WatchlistItem, error) {
	items, err := s.watchlist.List(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load watchlist")
	}
	return items, nil
}

func (s *Service) InWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error) {
	ok, err := s.watchlist.Contains(ctx, userID, movieID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load watchlist")
	}
	return ok, nil
}

func (s *Service) findRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error) {
	rating, err := s.ratings.FindByUserAndMovie(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "rating not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rating")
	}
	return rating, nil
}

func (s *Service) save(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if err := s.ratings.Save(ctx, rating); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save rating")
	}
	rate := rating.Rate()
	s.publish(ctx, events.TypeRatingSaved, rating.UserID, rating.MovieID, &rate)
	s.logger.DebugContext(ctx, "rating saved",
		"movie_id", rating.MovieID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return rating, nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, userID domain.UserID, movieID domain.MovieID, rate *float64) {
	s.publisher.Publish(ctx, events.Event{
		Type:       typ,
		UserID:     userID.String(),
		MovieID:    int64(movieID),
		Rate:       rate,
		OccurredAt: requestcontext.Now(ctx),
		RequestID:  requestcontext.RequestID(ctx),
	})
}
