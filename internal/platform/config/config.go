// Package config loads per-binary configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Credential is shared by the issuer and every verifying service.
type Credential struct {
	Secret string        `env:"CREDENTIAL_SECRET" envDefault:"dev-secret-key-change-in-production"`
	Issuer string        `env:"CREDENTIAL_ISSUER" envDefault:"microflix-users"`
	TTL    time.Duration `env:"CREDENTIAL_TTL" envDefault:"60m"`
}

// Logging selects the slog handler.
type Logging struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Tracing is opt-in: spans are exported only when Endpoint is set.
type Tracing struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// RedisConfig configures the optional Redis client. Empty URL means not configured.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"1s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"1s"`
}

// Postgres configures the optional database. Empty URL selects in-memory stores.
type Postgres struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
}

// Kafka configures rating event publishing. No brokers disables publishing.
type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_RATING_TOPIC" envDefault:"microflix.rating-events"`
}

// Gateway is the edge aggregator configuration.
type Gateway struct {
	Addr             string        `env:"GATEWAY_ADDR" envDefault:":8080"`
	MovieServiceURL  string        `env:"MOVIE_SERVICE_URL" envDefault:"http://localhost:8081"`
	RatingServiceURL string        `env:"RATING_SERVICE_URL" envDefault:"http://localhost:8082"`
	BranchTimeout    time.Duration `env:"GATEWAY_BRANCH_TIMEOUT" envDefault:"2s"`
	ClientTimeout    time.Duration `env:"GATEWAY_CLIENT_TIMEOUT" envDefault:"5s"`
	BreakerFailures  int           `env:"GATEWAY_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"GATEWAY_BREAKER_COOLDOWN" envDefault:"10s"`

	Credential Credential
	Logging    Logging
	Tracing    Tracing
}

// Movies is the movie service configuration.
type Movies struct {
	Addr string `env:"MOVIES_ADDR" envDefault:":8081"`

	Credential Credential
	Logging    Logging
	Tracing    Tracing
	Postgres   Postgres
	Redis      RedisConfig
	Lockout    LoginLockout
}

// LoginLockout throttles failed logins per email and client IP.
type LoginLockout struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	Window      time.Duration `env:"LOGIN_FAILURE_WINDOW" envDefault:"15m"`
	LockFor     time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m"`
}

// Ratings is the rating and engagement service configuration.
type Ratings struct {
	Addr string `env:"RATINGS_ADDR" envDefault:":8082"`

	Credential Credential
	Logging    Logging
	Tracing    Tracing
	Postgres   Postgres
	Redis      RedisConfig
	Kafka      Kafka
}

// Users is the identity issuer configuration.
type Users struct {
	Addr        string   `env:"USERS_ADDR" envDefault:":8083"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	Credential Credential
	Logging    Logging
	Tracing    Tracing
	Postgres   Postgres
	Redis      RedisConfig
	Lockout    LoginLockout
}

// Load parses T from the environment.
func Load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects configuration no service can run with.
func (c Credential) Validate() error {
	if c.Secret == "" {
		return errors.New("CREDENTIAL_SECRET must not be empty")
	}
	if c.Issuer == "" {
		return errors.New("CREDENTIAL_ISSUER must not be empty")
	}
	if c.TTL <= 0 {
		return errors.New("CREDENTIAL_TTL must be positive")
	}
	return nil
}

func (g Gateway) Validate() error {
	if err := g.Credential.Validate(); err != nil {
		return err
	}
	if g.BranchTimeout <= 0 {
		return errors.New("GATEWAY_BRANCH_TIMEOUT must be positive")
	}
	if g.MovieServiceURL == "" || g.RatingServiceURL == "" {
		return errors.New("MOVIE_SERVICE_URL and RATING_SERVICE_URL are required")
	}
	return nil
}
