//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"microflix/internal/rating/models"
	"microflix/internal/rating/store"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/testutil/containers"
)

type PostgresRatingStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresRatingStore
}

func TestPostgresRatingStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRatingStoreSuite))
}

func (s *PostgresRatingStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgresRatingStore(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresRatingStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "ratings"))
}

func (s *PostgresRatingStoreSuite) TestUpsertKeepsIDAndCreatedAt() {
	ctx := context.Background()
	user := domain.NewUserID()
	t0 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	first, err := models.NewRating(user, 42, 6.0, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, first))

	second, err := models.NewRating(user, 42, 8.5, t0.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, second))

	s.Equal(first.ID, second.ID)
	s.True(t0.Equal(second.CreatedAt))

	got, err := s.store.FindByUserAndMovie(ctx, user, 42)
	s.Require().NoError(err)
	s.Equal(85, got.RatingTimesTen)
	s.Equal(user, got.UserID)
}

func (s *PostgresRatingStoreSuite) TestSummaryAndDelete() {
	ctx := context.Background()
	now := time.Now().UTC()

	avg, count, err := s.store.Summary(ctx, 42)
	s.Require().NoError(err)
	s.Zero(avg)
	s.Zero(count)

	alice := domain.NewUserID()
	for _, rate := range []float64{8.0, 9.0} {
		r, err := models.NewRating(domain.NewUserID(), 42, rate, now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Save(ctx, r))
	}
	r, err := models.NewRating(alice, 42, 10.0, now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(ctx, r))

	avg, count, err = s.store.Summary(ctx, 42)
	s.Require().NoError(err)
	s.InDelta(90.0, avg, 0.0001)
	s.Equal(int64(3), count)

	s.Require().NoError(s.store.Delete(ctx, alice, 42))
	s.True(errors.Is(s.store.Delete(ctx, alice, 42), sentinel.ErrNotFound))

	byMovie, err := s.store.ListByMovie(ctx, 42)
	s.Require().NoError(err)
	s.Len(byMovie, 2)
}
