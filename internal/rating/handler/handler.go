package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microflix/internal/rating/models"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/platform/middleware/auth"
	"microflix/pkg/requestcontext"
)

// Service defines the rating and watchlist operations used by the handler.
type Service interface {
	RateMovie(ctx context.Context, userID domain.UserID, movieID domain.MovieID, rate float64) (*models.Rating, error)
	UpdateRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID, rate float64) (*models.Rating, error)
	DeleteRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error
	MyRating(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*models.Rating, error)
	Summary(ctx context.Context, movieID domain.MovieID) (models.Summary, error)
	ListMovieRatings(ctx context.Context, movieID domain.MovieID) ([]*models.Rating, error)
	ListUserRatings(ctx context.Context, userID domain.UserID) ([]*models.Rating, error)
	AddToWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error
	RemoveFromWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error
	Watchlist(ctx context.Context, userID domain.UserID) ([]models.WatchlistItem, error)
	InWatchlist(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts rating and engagement endpoints. Reads of aggregate data are
// public; everything tied to the caller requires a verified identity.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ratings/movie/{movieId}/summary", h.HandleSummary)
	r.Get("/ratings/movie/{movieId}", h.HandleListMovieRatings)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(h.logger))

		r.Get("/ratings/me", h.HandleListMyRatings)
		r.Get("/ratings/movie/{movieId}/me", h.HandleMyRating)
		r.Post("/ratings", h.HandleRate)
		r.Patch("/ratings", h.HandleUpdateRating)
		r.Delete("/ratings/{movieId}", h.HandleDeleteRating)

		r.Get("/engagements/watchlist", h.HandleWatchlist)
		r.Get("/engagements/watchlist/{movieId}/me", h.HandleInWatchlist)
		r.Put("/engagements/watchlist/{movieId}", h.HandleAddToWatchlist)
		r.Delete("/engagements/watchlist/{movieId}", h.HandleRemoveFromWatchlist)
	})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), movieID)
	if err != nil {
		h.fail(w, r, "rating summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleListMovieRatings(w http.ResponseWriter, r *http.Request) {
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	ratings, err := h.service.ListMovieRatings(r.Context(), movieID)
	if err != nil {
		h.fail(w, r, "list movie ratings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(ratings))
}

func (h *Handler) HandleListMyRatings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	ratings, err := h.service.ListUserRatings(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list user ratings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(ratings))
}

func (h *Handler) HandleMyRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	rating, err := h.service.MyRating(r.Context(), userID, movieID)
	if err != nil {
		h.fail(w, r, "my rating failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rating.Response())
}

func (h *Handler) HandleRate(w http.ResponseWriter, r *http.Request) {
	h.handleRateWrite(w, r, http.StatusCreated, h.service.RateMovie)
}

func (h *Handler) HandleUpdateRating(w http.ResponseWriter, r *http.Request) {
	h.handleRateWrite(w, r, http.StatusOK, h.service.UpdateRating)
}

type rateFunc func(ctx context.Context, userID domain.UserID, movieID domain.MovieID, rate float64) (*models.Rating, error)

func (h *Handler) handleRateWrite(w http.ResponseWriter, r *http.Request, status int, write rateFunc) {
	ctx := r.Context()
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rating, err := write(ctx, userID, req.movieID(), req.Rate)
	if err != nil {
		h.fail(w, r, "rate movie failed", err)
		return
	}
	httputil.WriteJSON(w, status, rating.Response())
}

func (h *Handler) HandleDeleteRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRating(r.Context(), userID, movieID); err != nil {
		h.fail(w, r, "delete rating failed", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) HandleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	items, err := h.service.Watchlist(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "watchlist failed", err)
		return
	}
	out := make([]models.WatchlistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, item.Response())
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleInWatchlist answers true, or 404 when the movie is not on the list.
func (h *Handler) HandleInWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	in, err := h.service.InWatchlist(r.Context(), userID, movieID)
	if err != nil {
		h.fail(w, r, "watchlist lookup failed", err)
		return
	}
	if !in {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "movie is not on the watchlist"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, true)
}

func (h *Handler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	h.handleWatchlistWrite(w, r, h.service.AddToWatchlist)
}

func (h *Handler) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	h.handleWatchlistWrite(w, r, h.service.RemoveFromWatchlist)
}

func (h *Handler) handleWatchlistWrite(w http.ResponseWriter, r *http.Request, write func(context.Context, domain.UserID, domain.MovieID) error) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	movieID, ok := h.movieParam(w, r)
	if !ok {
		return
	}
	if err := write(r.Context(), userID, movieID); err != nil {
		h.fail(w, r, "watchlist update failed", err)
		return
	}
	httputil.WriteNoContent(w)
}

// caller resolves the user id of the verified identity. The subject of a
// credential minted by the user service is always a user UUID.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, err := requestcontext.Identity(r.Context()).UserID()
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "credential subject is not a user id"))
		return domain.UserID{}, false
	}
	return userID, true
}

func (h *Handler) movieParam(w http.ResponseWriter, r *http.Request) (domain.MovieID, bool) {
	movieID, err := domain.ParseMovieID(chi.URLParam(r, "movieId"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return movieID, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeValidation:
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func toResponses(ratings []*models.Rating) []models.RatingResponse {
	out := make([]models.RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, r.Response())
	}
	return out
}
