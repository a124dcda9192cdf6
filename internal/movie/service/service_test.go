package service_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"microflix/internal/movie/models"
	"microflix/internal/movie/service"
	"microflix/internal/movie/store"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/requestcontext"
)

type MovieServiceSuite struct {
	suite.Suite
	svc *service.Service
	reg *prometheus.Registry
	ctx context.Context
	now time.Time
}

func TestMovieServiceSuite(t *testing.T) {
	suite.Run(t, new(MovieServiceSuite))
}

func (s *MovieServiceSuite) SetupTest() {
	s.reg = prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = service.New(store.NewInMemoryMovieStore(), logger, service.WithRegisterer(s.reg))
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *MovieServiceSuite) TestCreateThenGet() {
	movie, err := s.svc.CreateMovie(s.ctx, service.CreateMovieCommand{
		Title:  "Arrival",
		Genres: []string{"sci-fi", "Drama", "Sci-Fi"},
	})
	s.Require().NoError(err)
	s.Equal(s.now, movie.CreatedAt)
	s.Equal([]string{"Drama", "sci-fi"}, movie.Genres)

	got, err := s.svc.GetMovie(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal("Arrival", got.Title)

	expected := `
# HELP microflix_movies_created_total Total number of movies added to the catalog
# TYPE microflix_movies_created_total counter
microflix_movies_created_total 1
`
	s.NoError(testutil.GatherAndCompare(s.reg, strings.NewReader(expected), "microflix_movies_created_total"))
}

func (s *MovieServiceSuite) TestGetMissingMovie() {
	_, err := s.svc.GetMovie(s.ctx, domain.MovieID(999))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MovieServiceSuite) TestCreateValidation() {
	_, err := s.svc.CreateMovie(s.ctx, service.CreateMovieCommand{Title: ""})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MovieServiceSuite) TestCreateDuplicateTmdbID() {
	tmdb := int64(329865)
	_, err := s.svc.CreateMovie(s.ctx, service.CreateMovieCommand{Title: "Arrival", TmdbID: &tmdb})
	s.Require().NoError(err)

	_, err = s.svc.CreateMovie(s.ctx, service.CreateMovieCommand{Title: "Arrival again", TmdbID: &tmdb})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *MovieServiceSuite) TestSearchEmptyIsNotNil() {
	movies, err := s.svc.SearchMovies(s.ctx, models.Filter{Query: "nothing"})
	s.Require().NoError(err)
	s.NotNil(movies)
	s.Empty(movies)
}
