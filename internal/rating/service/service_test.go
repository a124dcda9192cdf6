package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"microflix/internal/rating/events"
	"microflix/internal/rating/service"
	"microflix/internal/rating/service/mocks"
	"microflix/internal/rating/store"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/requestcontext"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type RatingServiceSuite struct {
	suite.Suite
	svc       *service.Service
	published *capturePublisher
	ctx       context.Context
	now       time.Time
	user      domain.UserID
}

func TestRatingServiceSuite(t *testing.T) {
	suite.Run(t, new(RatingServiceSuite))
}

func (s *RatingServiceSuite) SetupTest() {
	s.published = &capturePublisher{}
	s.svc = service.New(
		store.NewInMemoryRatingStore(),
		store.NewInMemoryWatchlistStore(),
		s.published,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	s.now = time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.user = domain.NewUserID()
}

func (s *RatingServiceSuite) TestRateMovieCreatesThenUpdates() {
	first, err := s.svc.RateMovie(s.ctx, s.user, 42, 7.0)
	s.Require().NoError(err)
	s.Equal(70, first.RatingTimesTen)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	second, err := s.svc.RateMovie(later, s.user, 42, 8.5)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(8.5, second.Rate())
	s.Equal(s.now, second.CreatedAt)
	s.Equal(s.now.Add(time.Hour), second.UpdatedAt)

	s.Equal([]events.Type{events.TypeRatingSaved, events.TypeRatingSaved}, s.published.types())
}

func (s *RatingServiceSuite) TestRateMovieRejectsOutOfRange() {
	_, err := s.svc.RateMovie(s.ctx, s.user, 42, 10.5)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Empty(s.published.types())
}

func (s *RatingServiceSuite) TestUpdateRequiresExistingRating() {
	_, err := s.svc.UpdateRating(s.ctx, s.user, 42, 5.0)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.RateMovie(s.ctx, s.user, 42, 4.0)
	s.Require().NoError(err)
	updated, err := s.svc.UpdateRating(s.ctx, s.user, 42, 5.0)
	s.Require().NoError(err)
	s.Equal(50, updated.RatingTimesTen)
}

func (s *RatingServiceSuite) TestSummary() {
	s.Run("movie without ratings", func() {
		sum, err := s.svc.Summary(s.ctx, 7)
		s.Require().NoError(err)
		s.Nil(sum.Average)
		s.Zero(sum.Count)
		s.Equal(int64(7), sum.MovieID)
	})

	s.Run("average of rated movie", func() {
		for _, rate := range []float64{8.0, 9.0, 8.5} {
			_, err := s.svc.RateMovie(s.ctx, domain.NewUserID(), 42, rate)
			s.Require().NoError(err)
		}
		sum, err := s.svc.Summary(s.ctx, 42)
		s.Require().NoError(err)
		s.Require().NotNil(sum.Average)
		s.Equal(8.5, *sum.Average)
		s.Equal(int64(3), sum.Count)
	})
}

func (s *RatingServiceSuite) TestMyRatingAndDelete() {
	_, err := s.svc.MyRating(s.ctx, s.user, 42)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.RateMovie(s.ctx, s.user, 42, 6.0)
	s.Require().NoError(err)
	mine, err := s.svc.MyRating(s.ctx, s.user, 42)
	s.Require().NoError(err)
	s.Equal(6.0, mine.Rate())

	s.Require().NoError(s.svc.DeleteRating(s.ctx, s.user, 42))
	s.True(dErrors.HasCode(s.svc.DeleteRating(s.ctx, s.user, 42), dErrors.CodeNotFound))
	s.Contains(s.published.types(), events.TypeRatingDeleted)
}

func (s *RatingServiceSuite) TestWatchlist() {
	s.Require().NoError(s.svc.AddToWatchlist(s.ctx, s.user, 42))
	s.Require().NoError(s.svc.AddToWatchlist(s.ctx, s.user, 42))

	in, err := s.svc.InWatchlist(s.ctx, s.user, 42)
	s.Require().NoError(err)
	s.True(in)

	items, err := s.svc.Watchlist(s.ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(s.now, items[0].AddedAt)

	s.Require().NoError(s.svc.RemoveFromWatchlist(s.ctx, s.user, 42))
	in, err = s.svc.InWatchlist(s.ctx, s.user, 42)
	s.Require().NoError(err)
	s.False(in)
}

func (s *RatingServiceSuite) TestStoreFailuresAreInternal() {
	ctrl := gomock.NewController(s.T())
	ratings := mocks.NewMockRatingStore(ctrl)
	watchlist := mocks.NewMockWatchlistStore(ctrl)
	svc := service.New(ratings, watchlist, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	boom := errors.New("connection reset")

	ratings.EXPECT().FindByUserAndMovie(gomock.Any(), s.user, domain.MovieID(42)).Return(nil, boom)
	_, err := svc.RateMovie(s.ctx, s.user, 42, 5.0)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	ratings.EXPECT().Summary(gomock.Any(), domain.MovieID(42)).Return(0.0, int64(0), boom)
	_, err = svc.Summary(s.ctx, 42)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	watchlist.EXPECT().Contains(gomock.Any(), s.user, domain.MovieID(42)).Return(false, boom)
	_, err = svc.InWatchlist(s.ctx, s.user, 42)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, boom)
}

func (s *RatingServiceSuite) TestSaveNotCalledForInvalidRate() {
	ctrl := gomock.NewController(s.T())
	ratings := mocks.NewMockRatingStore(ctrl)
	svc := service.New(ratings, mocks.NewMockWatchlistStore(ctrl), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ratings.EXPECT().FindByUserAndMovie(gomock.Any(), s.user, domain.MovieID(42)).
		Return(nil, sentinel.ErrNotFound)
	ratings.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.RateMovie(s.ctx, s.user, 42, 0.5)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
