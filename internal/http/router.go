// Package httpapi builds the router shared by every microflix binary: the
// middleware chain, health and metrics endpoints, and the /api/v1 mount.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"microflix/internal/platform/metrics"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/platform/middleware/auth"
	"microflix/pkg/platform/middleware/metadata"
	"microflix/pkg/platform/middleware/request"
	"microflix/pkg/platform/middleware/requesttime"
)

// APIPrefix is where every service mounts its endpoints.
const APIPrefix = "/api/v1"

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Service  string
	Logger   *slog.Logger
	Verifier auth.IdentityVerifier
	Metrics  *metrics.Metrics
	Checks   map[string]HealthCheck
}

// NewRouter wires the middleware chain and mounts registrars under APIPrefix.
// Identity is resolved on every request; handlers decide whether they require it.
func NewRouter(opts Options, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	var httpMetrics request.HTTPMetrics
	if opts.Metrics != nil {
		httpMetrics = request.NewPrometheusMetrics(opts.Metrics.Registry, opts.Service)
	}
	r.Use(request.Logger(opts.Logger, httpMetrics))
	r.Use(request.Recovery(opts.Logger))
	r.Use(auth.ResolveIdentity(opts.Verifier, opts.Logger))

	r.Get("/health", healthHandler(opts.Checks))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		for _, reg := range registrars {
			reg.Register(r)
		}
	})

	return otelhttp.NewHandler(r, opts.Service)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "up"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
