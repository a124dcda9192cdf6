package handler

import (
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
)

// RateRequest is the body of POST and PATCH /ratings.
type RateRequest struct {
	MovieID int64   `json:"movieId"`
	Rate    float64 `json:"rate"`
}

func (r *RateRequest) Normalize() {}

func (r *RateRequest) Validate() error {
	if r.MovieID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "movieId must be a positive integer")
	}
	return nil
}

func (r *RateRequest) movieID() domain.MovieID { return domain.MovieID(r.MovieID) }
