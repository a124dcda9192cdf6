// Package catalog assembles the movie detail view served by the gateway from
// the movie service and the rating service.
package catalog

// Movie is the movie service representation passed through to clients.
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseYear *int     `json:"releaseYear"`
	Runtime     *int     `json:"runtime"`
	PosterURL   string   `json:"posterUrl"`
	BackdropURL string   `json:"backdropUrl"`
	Genres      []string `json:"genres"`
}

// RatingSummary aggregates every rating of a movie. Average is nil when Count is 0.
type RatingSummary struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

// EmptyRatingSummary is used when a movie has no ratings yet.
func EmptyRatingSummary() RatingSummary {
	return RatingSummary{Average: nil, Count: 0}
}

// Me is the caller-specific part of the view.
type Me struct {
	Rating      *float64 `json:"rating"`
	InWatchlist bool     `json:"inWatchlist"`
}

// AnonymousMe is the view of a caller without a verified credential.
func AnonymousMe() Me {
	return Me{Rating: nil, InWatchlist: false}
}

// MovieDetails is the aggregated response.
type MovieDetails struct {
	Movie         Movie         `json:"movie"`
	RatingSummary RatingSummary `json:"ratingSummary"`
	Me            Me            `json:"me"`
}
