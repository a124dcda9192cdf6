// Command movies serves the movie catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"microflix/internal/credential"
	httpapi "microflix/internal/http"
	moviehandler "microflix/internal/movie/handler"
	movieservice "microflix/internal/movie/service"
	moviestore "microflix/internal/movie/store"
	"microflix/internal/platform/config"
	"microflix/internal/platform/httpserver"
	"microflix/internal/platform/logger"
	"microflix/internal/platform/metrics"
	"microflix/internal/platform/postgres"
	"microflix/internal/platform/tracing"
)

const serviceName = "movies"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "movies: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[config.Movies]()
	if err != nil {
		return err
	}
	if err := cfg.Credential.Validate(); err != nil {
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
	checks := map[string]httpapi.HealthCheck{}

	var store movieservice.Store
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		pg := moviestore.NewPostgresMovieStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		store = pg
		checks["postgres"] = pool.Ping
		log.Info("movie store: postgres")
	} else {
		store = moviestore.NewInMemoryMovieStore()
		log.Warn("DATABASE_URL not set, movies are kept in memory")
	}

	svc := movieservice.New(store, log, movieservice.WithRegisterer(m.Registry))
	router := httpapi.NewRouter(httpapi.Options{
		Service:  serviceName,
		Logger:   log,
		Verifier: credential.NewVerifier([]byte(cfg.Credential.Secret), cfg.Credential.Issuer),
		Metrics:  m,
		Checks:   checks,
	}, moviehandler.New(svc, log))

	return httpserver.Run(httpserver.New(cfg.Addr, router), log)
}
