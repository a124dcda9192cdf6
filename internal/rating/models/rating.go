// Package models holds ratings, rating summaries and watchlist entries.
package models

import (
	"math"
	"time"

	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
)

// Ratings are kept as integers ten times the user-facing value so 7.5 is 75.
const (
	MinRate = 1.0
	MaxRate = 10.0
)

// Rating is one user's score for one movie.
//
// Invariants:
//   - At most one rating per (UserID, MovieID)
//   - RatingTimesTen is within [10, 100]
type Rating struct {
	ID             int64
	UserID         domain.UserID
	MovieID        domain.MovieID
	RatingTimesTen int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToTimesTen validates rate and scales it to an integer, rounding to the
// nearest 0.1 step.
func ToTimesTen(rate float64) (int, error) {
	if math.IsNaN(rate) || rate < MinRate || rate > MaxRate {
		return 0, dErrors.New(dErrors.CodeValidation, "rate must be between 1.0 and 10.0")
	}
	return int(math.Round(rate * 10)), nil
}

// Rate is the user-facing value.
func (r *Rating) Rate() float64 {
	return float64(r.RatingTimesTen) / 10
}

// NewRating builds an unsaved rating. The store assigns ID.
func NewRating(userID domain.UserID, movieID domain.MovieID, rate float64, now time.Time) (*Rating, error) {
	timesTen, err := ToTimesTen(rate)
	if err != nil {
		return nil, err
	}
	return &Rating{
		UserID:         userID,
		MovieID:        movieID,
		RatingTimesTen: timesTen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyRate changes the score and bumps UpdatedAt.
func (r *Rating) ApplyRate(rate float64, now time.Time) error {
	timesTen, err := ToTimesTen(rate)
	if err != nil {
		return err
	}
	r.RatingTimesTen = timesTen
	r.UpdatedAt = now
	return nil
}

// RatingResponse is the wire shape of a rating.
type RatingResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	MovieID   int64     `json:"movieId"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Rating) Response() RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		UserID:    r.UserID.String(),
		MovieID:   int64(r.MovieID),
		Rate:      r.Rate(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Summary aggregates the ratings of a movie. Average is nil when Count is 0.
type Summary struct {
	MovieID int64    `json:"movieId"`
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

// NewSummary converts a times-ten average into the user-facing average,
// rounded to two decimals.
func NewSummary(movieID domain.MovieID, averageTimesTen float64, count int64) Summary {
	if count == 0 {
		return Summary{MovieID: int64(movieID), Average: nil, Count: 0}
	}
	avg := math.Round(averageTimesTen*10) / 100
	return Summary{MovieID: int64(movieID), Average: &avg, Count: count}
}
