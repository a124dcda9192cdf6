package catalog

import (
	"context"
	"errors"
	"log/slog"

	"microflix/internal/fanout"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Branch names of the movie detail aggregation.
const (
	BranchMovie         = "movie"
	BranchRatingSummary = "ratingSummary"
	BranchMyRating      = "myRating"
	BranchInWatchlist   = "inWatchlist"
)

// Service assembles movie details.
type Service struct {
	movies   MovieClient
	ratings  RatingClient
	executor *fanout.Executor
	logger   *slog.Logger
}

func NewService(movies MovieClient, ratings RatingClient, executor *fanout.Executor, logger *slog.Logger) *Service {
	return &Service{
		movies:   movies,
		ratings:  ratings,
		executor: executor,
		logger:   logger,
	}
}

// MovieDetails gathers the movie, its rating summary and, for an identified
// viewer with a forwardable credential, the viewer's rating and watchlist state.
// Anonymous viewers get AnonymousMe without any personalized call.
func (s *Service) MovieDetails(ctx context.Context, id domain.MovieID, viewer domain.Identity, credential string) (*MovieDetails, error) {
	specs := []fanout.Spec{
		fanout.Required(BranchMovie, func(ctx context.Context) (*Movie, error) {
			return s.movies.GetMovie(ctx, id)
		}),
		fanout.Optional(BranchRatingSummary, func(ctx context.Context) (RatingSummary, error) {
			return s.ratings.Summary(ctx, id)
		}, EmptyRatingSummary()),
	}

	personalized := !viewer.IsAnonymous() && credential != ""
	if personalized {
		specs = append(specs,
			fanout.Optional(BranchMyRating, func(ctx context.Context) (*float64, error) {
				return s.ratings.MyRating(ctx, id, credential)
			}, nil),
			fanout.Optional(BranchInWatchlist, func(ctx context.Context) (bool, error) {
				return s.ratings.InWatchlist(ctx, id, credential)
			}, false),
		)
	}

	res, err := s.executor.Run(ctx, specs...)
	if err != nil {
		return nil, translateFailure(err)
	}

	movie, err := fanout.Value[*Movie](res, BranchMovie)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "movie service returned no movie")
	}
	summary, err := fanout.Value[RatingSummary](res, BranchRatingSummary)
	if err != nil {
		return nil, err
	}

	me := AnonymousMe()
	if personalized {
		if me.Rating, err = fanout.Value[*float64](res, BranchMyRating); err != nil {
			return nil, err
		}
		if me.InWatchlist, err = fanout.Value[bool](res, BranchInWatchlist); err != nil {
			return nil, err
		}
	}

	if degraded := res.Degraded(); len(degraded) > 0 && s.logger != nil {
		s.logger.DebugContext(ctx, "movie details used fallbacks",
			"movie_id", id.String(),
			"branches", degraded,
		)
	}

	return &MovieDetails{Movie: *movie, RatingSummary: summary, Me: me}, nil
}

// detailer is implemented by downstream errors that carry the remote
// service's own description.
type detailer interface {
	Detail() string
}

func translateFailure(err error) error {
	var be *fanout.BranchError
	if !errors.As(err, &be) {
		return err
	}
	switch be.Kind {
	case fanout.FailureNotFound:
		if be.Branch == BranchMovie {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "movie not found")
		}
		return dErrors.Wrap(err, dErrors.CodeNotFound, be.Branch+" not found")
	case fanout.FailureTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, withDetail("upstream timeout loading "+be.Branch, err))
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, withDetail("upstream failure loading "+be.Branch, err))
	}
}

func withDetail(msg string, err error) string {
	var d detailer
	if errors.As(err, &d) && d.Detail() != "" {
		return msg + ": " + d.Detail()
	}
	return msg
}
