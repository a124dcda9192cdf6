package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"microflix/internal/rating/models"
	"microflix/pkg/domain"
	"microflix/pkg/platform/sentinel"
)

type InMemoryRatingStoreSuite struct {
	suite.Suite
	store *InMemoryRatingStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryRatingStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryRatingStoreSuite))
}

func (s *InMemoryRatingStoreSuite) SetupTest() {
	s.store = NewInMemoryRatingStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryRatingStoreSuite) save(user domain.UserID, movie domain.MovieID, rate float64, at time.Time) *models.Rating {
	r, err := models.NewRating(user, movie, rate, at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Save(s.ctx, r))
	return r
}

func (s *InMemoryRatingStoreSuite) TestSaveUpsertsPerUserAndMovie() {
	user := domain.NewUserID()
	first := s.save(user, 42, 6.0, s.now)
	second := s.save(user, 42, 8.5, s.now.Add(time.Hour))

	s.Equal(first.ID, second.ID)
	s.Equal(s.now, second.CreatedAt)

	got, err := s.store.FindByUserAndMovie(s.ctx, user, 42)
	s.Require().NoError(err)
	s.Equal(85, got.RatingTimesTen)
	s.Equal(s.now.Add(time.Hour), got.UpdatedAt)
}

func (s *InMemoryRatingStoreSuite) TestSummary() {
	s.Run("no ratings", func() {
		avg, count, err := s.store.Summary(s.ctx, 7)
		s.Require().NoError(err)
		s.Zero(avg)
		s.Zero(count)
	})

	s.Run("mean of times ten values", func() {
		s.save(domain.NewUserID(), 42, 8.0, s.now)
		s.save(domain.NewUserID(), 42, 9.0, s.now)
		s.save(domain.NewUserID(), 43, 1.0, s.now)

		avg, count, err := s.store.Summary(s.ctx, 42)
		s.Require().NoError(err)
		s.Equal(85.0, avg)
		s.Equal(int64(2), count)
	})
}

func (s *InMemoryRatingStoreSuite) TestDeleteAndLists() {
	alice, bob := domain.NewUserID(), domain.NewUserID()
	s.save(alice, 1, 5, s.now)
	s.save(alice, 2, 6, s.now)
	s.save(bob, 1, 7, s.now)

	byMovie, err := s.store.ListByMovie(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(byMovie, 2)

	s.Require().NoError(s.store.Delete(s.ctx, alice, 1))
	s.True(errors.Is(s.store.Delete(s.ctx, alice, 1), sentinel.ErrNotFound))

	byUser, err := s.store.ListByUser(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(byUser, 1)
	s.Equal(domain.MovieID(2), byUser[0].MovieID)

	_, err = s.store.FindByUserAndMovie(s.ctx, alice, 1)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemoryWatchlistStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryWatchlistStore()
	user := domain.NewUserID()
	t0 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("add is idempotent and keeps first time", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, user, 42, t0))
		require.NoError(t, store.Add(ctx, user, 42, t0.Add(time.Hour)))

		items, err := store.List(ctx, user)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, t0, items[0].AddedAt)
	})

	t.Run("list is newest first", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, user, 7, t0.Add(time.Minute)))

		items, err := store.List(ctx, user)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, domain.MovieID(7), items[0].MovieID)
	})

	t.Run("contains and remove", func(t *testing.T) {
		ok, err := store.Contains(ctx, user, 42)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, store.Remove(ctx, user, 42))
		require.NoError(t, store.Remove(ctx, user, 42))

		ok, err = store.Contains(ctx, user, 42)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown user has empty list", func(t *testing.T) {
		items, err := store.List(ctx, domain.NewUserID())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
