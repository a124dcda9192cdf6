// Package events publishes rating and watchlist changes.
//
// Publishing is fire-and-forget from the request path: events are buffered
// and a background worker writes them to the sink in batches.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeRatingSaved      Type = "rating.saved"
	TypeRatingDeleted    Type = "rating.deleted"
	TypeWatchlistAdded   Type = "watchlist.added"
	TypeWatchlistRemoved Type = "watchlist.removed"
)

// Event is the JSON payload written to the rating topic.
type Event struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"userId"`
	MovieID    int64     `json:"movieId"`
	Rate       *float64  `json:"rate,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	RequestID  string    `json:"requestId,omitempty"`
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink writes a batch of events to durable storage or a broker.
type Sink interface {
	Write(ctx context.Context, batch []Event) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
