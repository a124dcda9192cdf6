package models

import (
	"time"

	"microflix/pkg/domain"
)

// EngagementWatchlist is the only engagement type served today.
const EngagementWatchlist = "WATCHLIST"

// WatchlistItem is one movie on a user's watchlist.
type WatchlistItem struct {
	UserID  domain.UserID
	MovieID domain.MovieID
	AddedAt time.Time
}

// WatchlistItemResponse is the wire shape of a watchlist entry.
type WatchlistItemResponse struct {
	UserID  string    `json:"userId"`
	MovieID int64     `json:"movieId"`
	Type    string    `json:"type"`
	AddedAt time.Time `json:"addedAt"`
}

func (w WatchlistItem) Response() WatchlistItemResponse {
	return WatchlistItemResponse{
		UserID:  w.UserID.String(),
		MovieID: int64(w.MovieID),
		Type:    EngagementWatchlist,
		AddedAt: w.AddedAt,
	}
}
