// Command ratings serves ratings, rating summaries and the watchlist.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"microflix/internal/credential"
	httpapi "microflix/internal/http"
	"microflix/internal/platform/config"
	"microflix/internal/platform/httpserver"
	"microflix/internal/platform/kafka"
	"microflix/internal/platform/logger"
	"microflix/internal/platform/metrics"
	"microflix/internal/platform/postgres"
	"microflix/internal/platform/redis"
	"microflix/internal/platform/tracing"
	"microflix/internal/rating/events"
	ratinghandler "microflix/internal/rating/handler"
	ratingservice "microflix/internal/rating/service"
	ratingstore "microflix/internal/rating/store"
)

const serviceName = "ratings"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ratings: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[config.Ratings]()
	if err != nil {
		return err
	}
	if err := cfg.Credential.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	var ratings ratingservice.RatingStore
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		pg := ratingstore.NewPostgresRatingStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		ratings = pg
		checks["postgres"] = pool.Ping
	} else {
		ratings = ratingstore.NewInMemoryRatingStore()
		log.Warn("DATABASE_URL not set, ratings are kept in memory")
	}

	var watchlist ratingservice.WatchlistStore
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		watchlist = ratingstore.NewRedisWatchlistStore(redisClient.Client)
		checks["redis"] = redisClient.Health
	} else {
		watchlist = ratingstore.NewInMemoryWatchlistStore()
		log.Warn("REDIS_URL not set, watchlists are kept in memory")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	publisherDone := make(chan struct{})
	producer, err := kafka.NewProducer(ctx, cfg.Kafka, "microflix-"+serviceName)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		async := events.NewAsyncPublisher(
			events.NewKafkaSink(producer, cfg.Kafka.Topic),
			log,
			events.WithRegisterer(m.Registry),
		)
		publisher = async
		go func() {
			defer close(publisherDone)
			if err := async.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("rating event publisher stopped", "error", err)
			}
		}()
		log.Info("rating events enabled", "topic", cfg.Kafka.Topic)
	} else {
		close(publisherDone)
	}

	svc := ratingservice.New(ratings, watchlist, publisher, log)
	router := httpapi.NewRouter(httpapi.Options{
		Service:  serviceName,
		Logger:   log,
		Verifier: credential.NewVerifier([]byte(cfg.Credential.Secret), cfg.Credential.Issuer),
		Metrics:  m,
		Checks:   checks,
	}, ratinghandler.New(svc, log))

	serveErr := httpserver.Run(httpserver.New(cfg.Addr, router), log)
	cancel()
	<-publisherDone
	return serveErr
}
