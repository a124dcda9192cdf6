package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 500 * time.Millisecond
	drainTimeout         = 5 * time.Second
)

// AsyncPublisher buffers events in memory and flushes them to a Sink from Run.
// Events still buffered when the process dies are lost.
type AsyncPublisher struct {
	buffer        *RingBuffer
	sink          Sink
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	wake          chan struct{}
	outcomes      *prometheus.CounterVec
}

type Option func(*AsyncPublisher)

func WithBatchSize(n int) Option {
	return func(p *AsyncPublisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *AsyncPublisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithBuffer(b *RingBuffer) Option {
	return func(p *AsyncPublisher) { p.buffer = b }
}

// WithRegisterer exposes microflix_rating_events_total{outcome}.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *AsyncPublisher) {
		p.outcomes = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "microflix_rating_events_total",
			Help: "Rating events by delivery outcome (published, failed, dropped)",
		}, []string{"outcome"})
	}
}

func NewAsyncPublisher(sink Sink, logger *slog.Logger, opts ...Option) *AsyncPublisher {
	p := &AsyncPublisher{
		sink:          sink,
		logger:        logger,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer == nil {
		p.buffer = NewRingBuffer(0)
	}
	return p
}

// Publish enqueues the event. It never blocks on the sink.
func (p *AsyncPublisher) Publish(ctx context.Context, event Event) {
	if p.buffer.Enqueue(event) {
		p.count("dropped", 1)
		p.logger.WarnContext(ctx, "rating event buffer full, dropped oldest event")
	}
	if p.buffer.Len() >= p.batchSize {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Run flushes until ctx is cancelled, then drains what is left.
func (p *AsyncPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			p.flushAll(drainCtx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			p.flushAll(ctx)
		case <-p.wake:
			p.flushAll(ctx)
		}
	}
}

func (p *AsyncPublisher) flushAll(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		if err := p.sink.Write(ctx, batch); err != nil {
			p.count("failed", len(batch))
			p.logger.ErrorContext(ctx, "failed to publish rating events",
				"error", err,
				"batch_size", len(batch),
			)
			return
		}
		p.count("published", len(batch))
	}
}

func (p *AsyncPublisher) count(outcome string, n int) {
	if p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(outcome).Add(float64(n))
}
