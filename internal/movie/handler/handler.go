package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"microflix/internal/movie/models"
	"microflix/internal/movie/service"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/platform/middleware/auth"
	"microflix/pkg/requestcontext"
)

// Service defines the movie operations used by the handler.
type Service interface {
	GetMovie(ctx context.Context, id domain.MovieID) (*models.Movie, error)
	CreateMovie(ctx context.Context, cmd service.CreateMovieCommand) (*models.Movie, error)
	SearchMovies(ctx context.Context, filter models.Filter) ([]*models.Movie, error)
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

// Register mounts movie endpoints. Creating a movie requires the ADMIN role.
func (h *Handler) Register(r chi.Router) {
	r.Get("/movies", h.HandleSearchMovies)
	r.Get("/movies/{id}", h.HandleGetMovie)
	r.With(auth.RequireRole(domain.RoleAdmin, h.logger)).Post("/movies", h.HandleCreateMovie)
}

func (h *Handler) HandleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	movie, err := h.service.GetMovie(r.Context(), id)
	if err != nil {
		h.logFailure(r.Context(), "get movie failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, movie)
}

func (h *Handler) HandleCreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateMovieRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	movie, err := h.service.CreateMovie(ctx, service.CreateMovieCommand{
		Title:       req.Title,
		Overview:    req.Overview,
		ReleaseYear: req.ReleaseYear,
		Runtime:     req.Runtime,
		TmdbID:      req.TmdbID,
		PosterURL:   req.PosterURL,
		BackdropURL: req.BackdropURL,
		Genres:      req.Genres,
	})
	if err != nil {
		h.logFailure(ctx, "create movie failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, movie)
}

// HandleSearchMovies handles GET /movies?q=&genre=&year=.
func (h *Handler) HandleSearchMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.Filter{
		Query: strings.TrimSpace(q.Get("q")),
		Genre: strings.TrimSpace(q.Get("genre")),
	}
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "year must be an integer"))
			return
		}
		filter.Year = &year
	}

	movies, err := h.service.SearchMovies(r.Context(), filter)
	if err != nil {
		h.logFailure(r.Context(), "search movies failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, movies)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeConflict:
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
