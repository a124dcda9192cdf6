//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"microflix/internal/movie/models"
	"microflix/internal/movie/store"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/testutil/containers"
)

type PostgresMovieStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresMovieStore
}

func TestPostgresMovieStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresMovieStoreSuite))
}

func (s *PostgresMovieStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresMovieStore(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresMovieStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "movies"))
}

func (s *PostgresMovieStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	year, runtime := 1999, 136
	tmdb := int64(603)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, err := models.NewMovie("The Matrix", "Neo wakes up.", &year, &runtime, &tmdb, "/p.jpg", "/b.jpg", []string{"Sci-Fi", "action"}, created)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Create(ctx, m))
	s.NotZero(m.ID)

	found, err := s.store.FindByID(ctx, m.ID)
	s.Require().NoError(err)
	s.Equal("The Matrix", found.Title)
	s.Equal([]string{"action", "Sci-Fi"}, found.Genres)
	s.Require().NotNil(found.ReleaseYear)
	s.Equal(1999, *found.ReleaseYear)
	s.True(created.Equal(found.CreatedAt))

	dup, err := models.NewMovie("Duplicate", "", nil, nil, &tmdb, "", "", nil, created)
	s.Require().NoError(err)
	s.True(errors.Is(s.store.Create(ctx, dup), sentinel.ErrConflict))
}

func (s *PostgresMovieStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), domain.MovieID(424242))
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresMovieStoreSuite) TestSearch() {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	y := 1995
	for i, title := range []string{"Heat", "Casino", "Heat Wave"} {
		m, err := models.NewMovie(title, "", &y, nil, nil, "", "", []string{"Crime"}, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(ctx, m))
	}

	got, err := s.store.Search(ctx, models.Filter{Query: "heat", Genre: "crime", Year: &y})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("Heat Wave", got[0].Title)
	s.Equal("Heat", got[1].Title)
}
