// Command users registers and authenticates users and issues the credentials
// every other service verifies.
package main

import (
	"context"
	"fmt"
	"os"

	"microflix/internal/credential"
	httpapi "microflix/internal/http"
	"microflix/internal/platform/config"
	"microflix/internal/platform/httpserver"
	"microflix/internal/platform/logger"
	"microflix/internal/platform/metrics"
	"microflix/internal/platform/postgres"
	"microflix/internal/platform/redis"
	"microflix/internal/platform/tracing"
	userhandler "microflix/internal/user/handler"
	"microflix/internal/user/lockout"
	userservice "microflix/internal/user/service"
	userstore "microflix/internal/user/store"
)

const serviceName = "users"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "users: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[config.Users]()
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

	var store userservice.Store
	db, err := postgres.NewDB(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		pg := userstore.NewPostgresUserStore(db)
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		store = pg
		checks["postgres"] = db.PingContext
	} else {
		store = userstore.NewInMemoryUserStore()
		log.Warn("DATABASE_URL not set, users are kept in memory")
	}

	var lockoutStore lockout.Store
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		lockoutStore = lockout.NewRedisStore(redisClient.Client)
		checks["redis"] = redisClient.Health
	} else {
		lockoutStore = lockout.NewInMemoryStore()
	}
	guard := lockout.New(lockoutStore, log,
		lockout.WithLimits(cfg.Lockout.MaxAttempts, cfg.Lockout.Window, cfg.Lockout.LockFor),
		lockout.WithRegisterer(m.Registry),
	)

	secret := []byte(cfg.Credential.Secret)
	svc := userservice.New(
		store,
		credential.NewIssuer(secret, cfg.Credential.Issuer, cfg.Credential.TTL),
		log,
		userservice.WithAdminEmails(cfg.AdminEmails),
		userservice.WithLoginGuard(guard),
		userservice.WithRegisterer(m.Registry),
	)
	router := httpapi.NewRouter(httpapi.Options{
		Service:  serviceName,
		Logger:   log,
		Verifier: credential.NewVerifier(secret, cfg.Credential.Issuer),
		Metrics:  m,
		Checks:   checks,
	}, userhandler.New(svc, log))

	log.Info("user service configured",
		"issuer", cfg.Credential.Issuer,
		"credential_ttl", cfg.Credential.TTL.String(),
		"admin_emails", len(cfg.AdminEmails),
	)
	return httpserver.Run(httpserver.New(cfg.Addr, router), log)
}
