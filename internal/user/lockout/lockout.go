// Package lockout throttles password guessing against the login endpoint.
// Failures are counted per (email, client IP) inside a fixed window; reaching
// the limit locks that pair out for a while.
package lockout

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/requestcontext"
)

const (
	DefaultAttempts = 5
	DefaultWindow   = 15 * time.Minute
	DefaultLockFor  = 15 * time.Minute
)

// Store keeps failure counters and locks by key.
type Store interface {
	// RecordFailure increments the counter for key and returns the new count.
	// The counter resets once window has elapsed since the first failure.
	RecordFailure(ctx context.Context, key string, window time.Duration, now time.Time) (int, error)
	Lock(ctx context.Context, key string, until, now time.Time) error
	// LockedUntil returns nil when key is not locked at now.
	LockedUntil(ctx context.Context, key string, now time.Time) (*time.Time, error)
	Clear(ctx context.Context, key string) error
}

type Guard struct {
	store    Store
	logger   *slog.Logger
	attempts int
	window   time.Duration
	lockFor  time.Duration
	lockouts prometheus.Counter
}

type Option func(*Guard)

func WithLimits(attempts int, window, lockFor time.Duration) Option {
	return func(g *Guard) {
		if attempts > 0 {
			g.attempts = attempts
		}
		if window > 0 {
			g.window = window
		}
		if lockFor > 0 {
			g.lockFor = lockFor
		}
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(g *Guard) {
		g.lockouts = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "microflix_user_login_lockouts_total",
			Help: "Number of times an email/IP pair was locked out of login",
		})
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Guard {
	g := &Guard{
		store:    store,
		logger:   logger,
		attempts: DefaultAttempts,
		window:   DefaultWindow,
		lockFor:  DefaultLockFor,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key identifies the throttled pair. Email is expected normalized.
func Key(email, ip string) string {
	return email + "|" + ip
}

// Check fails with rate_limited while the pair is locked.
func (g *Guard) Check(ctx context.Context, email, ip string) error {
	until, err := g.store.LockedUntil(ctx, Key(email, ip), requestcontext.Now(ctx))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check login lockout")
	}
	if until != nil {
		return dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts, try again later")
	}
	return nil
}

// RecordFailure counts a rejected login and locks the pair once the limit is reached.
func (g *Guard) RecordFailure(ctx context.Context, email, ip string) error {
	now := requestcontext.Now(ctx)
	key := Key(email, ip)
	count, err := g.store.RecordFailure(ctx, key, g.window, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	if count < g.attempts {
		return nil
	}
	until := now.Add(g.lockFor)
	if err := g.store.Lock(ctx, key, until, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock login")
	}
	if g.lockouts != nil {
		g.lockouts.Inc()
	}
	g.logger.WarnContext(ctx, "login locked out",
		"failures", count,
		"locked_until", until,
		"client_ip", ip,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Clear forgets failures after a successful login.
func (g *Guard) Clear(ctx context.Context, email, ip string) error {
	if err := g.store.Clear(ctx, Key(email, ip)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear login failures")
	}
	return nil
}
