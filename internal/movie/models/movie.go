// Package models holds the movie catalog aggregate.
package models

import (
	"strings"
	"time"

	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	pkgstrings "microflix/pkg/platform/strings"
)

const maxTitleLength = 255

// Movie is a catalog entry.
//
// Invariants:
//   - Title is non-empty and at most 255 characters
//   - Genres are de-duplicated case-insensitively and sorted
//   - TmdbID, when set, is unique across the catalog
type Movie struct {
	ID          domain.MovieID `json:"id"`
	Title       string         `json:"title"`
	Overview    string         `json:"overview"`
	ReleaseYear *int           `json:"releaseYear"`
	Runtime     *int           `json:"runtime"`
	TmdbID      *int64         `json:"tmdbId"`
	PosterURL   string         `json:"posterUrl"`
	BackdropURL string         `json:"backdropUrl"`
	Genres      []string       `json:"genres"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewMovie validates the fields and builds an unsaved movie. The store assigns ID.
func NewMovie(title, overview string, releaseYear, runtime *int, tmdbID *int64, posterURL, backdropURL string, genres []string, now time.Time) (*Movie, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(title) > maxTitleLength {
		return nil, dErrors.New(dErrors.CodeValidation, "title must be 255 characters or less")
	}
	if runtime != nil && *runtime <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "runtime must be positive")
	}
	genres = pkgstrings.FoldedSet(genres)
	if genres == nil {
		genres = []string{}
	}
	return &Movie{
		Title:       title,
		Overview:    strings.TrimSpace(overview),
		ReleaseYear: releaseYear,
		Runtime:     runtime,
		TmdbID:      tmdbID,
		PosterURL:   strings.TrimSpace(posterURL),
		BackdropURL: strings.TrimSpace(backdropURL),
		Genres:      genres,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HasGenre reports whether the movie carries genre, ignoring case.
func (m *Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// Filter narrows a catalog search. Zero fields match everything.
type Filter struct {
	Query string
	Genre string
	Year  *int
}

// Matches applies the filter to a single movie.
func (f Filter) Matches(m *Movie) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Query)) {
		return false
	}
	if f.Genre != "" && !m.HasGenre(f.Genre) {
		return false
	}
	if f.Year != nil && (m.ReleaseYear == nil || *m.ReleaseYear != *f.Year) {
		return false
	}
	return true
}
