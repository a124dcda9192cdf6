package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"microflix/internal/catalog"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/requestcontext"
)

// Service defines the catalog aggregation used by the handler.
type Service interface {
	MovieDetails(ctx context.Context, id domain.MovieID, viewer domain.Identity, credential string) (*catalog.MovieDetails, error)
}

// Handler wires gateway catalog endpoints to the catalog service.
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

// Register mounts catalog endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/catalog/movies/{id}", h.HandleGetMovieDetails)
}

// HandleGetMovieDetails handles GET /catalog/movies/{id}.
func (h *Handler) HandleGetMovieDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	movieID, err := domain.ParseMovieID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	viewer := requestcontext.Identity(ctx)
	details, err := h.service.MovieDetails(ctx, movieID, viewer, requestcontext.Credential(ctx))
	if err != nil {
		level := slog.LevelError
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			level = slog.LevelInfo
		}
		h.logger.Log(ctx, level, "movie details failed",
			"request_id", requestID,
			"movie_id", movieID.String(),
			"anonymous", viewer.IsAnonymous(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "movie details served",
		"request_id", requestID,
		"movie_id", movieID.String(),
		"anonymous", viewer.IsAnonymous(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, details)
}
