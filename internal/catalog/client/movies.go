package client

import (
	"context"
	"net/http"

	"microflix/internal/catalog"
	"microflix/pkg/domain"
	"microflix/pkg/platform/circuit"
)

// Movies reads from the movie service.
type Movies struct {
	d downstream
}

func NewMovies(baseURL string, httpClient *http.Client, breaker *circuit.Breaker) *Movies {
	return &Movies{d: newDownstream("movie-service", baseURL, httpClient, breaker)}
}

// GetMovie calls GET /api/v1/movies/{id}.
func (c *Movies) GetMovie(ctx context.Context, id domain.MovieID) (*catalog.Movie, error) {
	var movie catalog.Movie
	if err := c.d.getJSON(ctx, "/api/v1/movies/"+id.String(), "", &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}
