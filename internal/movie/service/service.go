// Package service implements the movie catalog use cases.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"microflix/internal/movie/models"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/requestcontext"
)

// Store is the persistence port of the movie service.
type Store interface {
	Create(ctx context.Context, movie *models.Movie) error
	FindByID(ctx context.Context, id domain.MovieID) (*models.Movie, error)
	Search(ctx context.Context, filter models.Filter) ([]*models.Movie, error)
}

// CreateMovieCommand carries already-decoded create input.
type CreateMovieCommand struct {
	Title       string
	Overview    string
	ReleaseYear *int
	Runtime     *int
	TmdbID      *int64
	PosterURL   string
	BackdropURL string
	Genres      []string
}

type Service struct {
	store   Store
	logger  *slog.Logger
	created prometheus.Counter
}

type Option func(*Service)

// WithRegisterer registers the service counters on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) {
		s.created = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "microflix_movies_created_total",
			Help: "Total number of movies added to the catalog",
		})
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetMovie(ctx context.Context, id domain.MovieID) (*models.Movie, error) {
	movie, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "movie not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load movie")
	}
	return movie, nil
}

func (s *Service) CreateMovie(ctx context.Context, cmd CreateMovieCommand) (*models.Movie, error) {
	movie, err := models.NewMovie(cmd.Title, cmd.Overview, cmd.ReleaseYear, cmd.Runtime, cmd.TmdbID,
		cmd.PosterURL, cmd.BackdropURL, cmd.Genres, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, movie); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "a movie with this tmdbId already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create movie")
	}
	if s.created != nil {
		s.created.Inc()
	}
	s.logger.InfoContext(ctx, "movie created",
		"movie_id", movie.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return movie, nil
}

func (s *Service) SearchMovies(ctx context.Context, filter models.Filter) ([]*models.Movie, error) {
	movies, err := s.store.Search(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search movies")
	}
	if movies == nil {
		movies = []*models.Movie{}
	}
	return movies, nil
}
