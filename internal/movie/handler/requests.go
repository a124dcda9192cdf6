package handler

import (
	"strings"

	dErrors "microflix/pkg/domain-errors"
)

const maxGenres = 20

// CreateMovieRequest is the body of POST /movies.
type CreateMovieRequest struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseYear *int     `json:"releaseYear"`
	Runtime     *int     `json:"runtime"`
	TmdbID      *int64   `json:"tmdbId"`
	PosterURL   string   `json:"posterUrl"`
	BackdropURL string   `json:"backdropUrl"`
	Genres      []string `json:"genres"`
}

func (r *CreateMovieRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Overview = strings.TrimSpace(r.Overview)
}

func (r *CreateMovieRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(r.Genres) > maxGenres {
		return dErrors.New(dErrors.CodeValidation, "too many genres")
	}
	if r.ReleaseYear != nil && (*r.ReleaseYear < 1870 || *r.ReleaseYear > 2200) {
		return dErrors.New(dErrors.CodeValidation, "releaseYear is out of range")
	}
	if r.TmdbID != nil && *r.TmdbID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "tmdbId must be positive")
	}
	return nil
}
