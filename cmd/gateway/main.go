// Command gateway serves the aggregated movie details endpoint. It fans out
// to the movie and rating services and forwards the caller's credential to the
// personalized branches.
package main

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"

	"microflix/internal/catalog"
	"microflix/internal/catalog/client"
	cataloghandler "microflix/internal/catalog/handler"
	"microflix/internal/credential"
	"microflix/internal/fanout"
	httpapi "microflix/internal/http"
	"microflix/internal/platform/config"
	"microflix/internal/platform/httpserver"
	"microflix/internal/platform/logger"
	"microflix/internal/platform/metrics"
	"microflix/internal/platform/tracing"
	"microflix/pkg/platform/circuit"
)

const serviceName = "gateway"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[config.Gateway]()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	m := metrics.New()
	httpClient := client.NewHTTPClient(cfg.ClientTimeout)
	movieBreaker := newBreaker("movie-service", cfg)
	ratingBreaker := newBreaker("rating-service", cfg)

	executor := fanout.New(
		fanout.WithDefaultTimeout(cfg.BranchTimeout),
		fanout.WithMetrics(fanout.NewMetrics(m.Registry)),
		fanout.WithTracer(otel.Tracer("microflix/gateway")),
		fanout.WithLogger(log),
	)
	svc := catalog.NewService(
		client.NewMovies(cfg.MovieServiceURL, httpClient, movieBreaker),
		client.NewRatings(cfg.RatingServiceURL, httpClient, ratingBreaker),
		executor,
		log,
	)

	router := httpapi.NewRouter(httpapi.Options{
		Service:  serviceName,
		Logger:   log,
		Verifier: credential.NewVerifier([]byte(cfg.Credential.Secret), cfg.Credential.Issuer),
		Metrics:  m,
		Checks: map[string]httpapi.HealthCheck{
			"movie-service":  breakerCheck(movieBreaker),
			"rating-service": breakerCheck(ratingBreaker),
		},
	}, cataloghandler.New(svc, log))

	log.Info("gateway configured",
		"movie_service", cfg.MovieServiceURL,
		"rating_service", cfg.RatingServiceURL,
		"branch_timeout", cfg.BranchTimeout.String(),
	)
	return httpserver.Run(httpserver.New(cfg.Addr, router), log)
}

func newBreaker(name string, cfg config.Gateway) *circuit.Breaker {
	return circuit.New(name,
		circuit.WithFailureThreshold(cfg.BreakerFailures),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)
}

// breakerCheck reports a downstream as down while its breaker is open.
func breakerCheck(b *circuit.Breaker) httpapi.HealthCheck {
	return func(context.Context) error {
		if b.IsOpen() {
			return fmt.Errorf("%s circuit open", b.Name())
		}
		return nil
	}
}
