package client

import (
	"context"
	"net/http"

	"microflix/internal/catalog"
	"microflix/pkg/domain"
	"microflix/pkg/platform/circuit"
)

// Ratings reads ratings and watchlist membership from the rating service.
type Ratings struct {
	d downstream
}

func NewRatings(baseURL string, httpClient *http.Client, breaker *circuit.Breaker) *Ratings {
	return &Ratings{d: newDownstream("rating-service", baseURL, httpClient, breaker)}
}

type summaryResponse struct {
	MovieID int64    `json:"movieId"`
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

type myRatingResponse struct {
	Rate *float64 `json:"rate"`
}

// Summary calls GET /api/v1/ratings/movie/{id}/summary.
func (c *Ratings) Summary(ctx context.Context, id domain.MovieID) (catalog.RatingSummary, error) {
	var resp summaryResponse
	if err := c.d.getJSON(ctx, "/api/v1/ratings/movie/"+id.String()+"/summary", "", &resp); err != nil {
		return catalog.RatingSummary{}, err
	}
	if resp.Count == 0 {
		return catalog.EmptyRatingSummary(), nil
	}
	return catalog.RatingSummary{Average: resp.Average, Count: resp.Count}, nil
}

// MyRating calls GET /api/v1/ratings/movie/{id}/me with the caller's credential.
func (c *Ratings) MyRating(ctx context.Context, id domain.MovieID, credential string) (*float64, error) {
	var resp myRatingResponse
	if err := c.d.getJSON(ctx, "/api/v1/ratings/movie/"+id.String()+"/me", credential, &resp); err != nil {
		return nil, err
	}
	return resp.Rate, nil
}

// InWatchlist calls GET /api/v1/engagements/watchlist/{id}/me with the caller's credential.
func (c *Ratings) InWatchlist(ctx context.Context, id domain.MovieID, credential string) (bool, error) {
	var in bool
	if err := c.d.getJSON(ctx, "/api/v1/engagements/watchlist/"+id.String()+"/me", credential, &in); err != nil {
		return false, err
	}
	return in, nil
}
