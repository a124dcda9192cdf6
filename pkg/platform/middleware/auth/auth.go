// Package auth resolves the caller identity from the bearer credential and
// enforces per-endpoint identity policy.
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/requestcontext"
)

// IdentityVerifier verifies a raw bearer credential.
type IdentityVerifier interface {
	Verify(credential string) (domain.Identity, error)
}

// kinded is implemented by credential errors that expose a failure kind for logs.
type kinded interface {
	error
	KindName() string
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(after)
	return token, token != ""
}

// ResolveIdentity runs once per request and never rejects. A verified credential
// yields an identified caller and is kept for forwarding; anything else
// (missing, wrong scheme, malformed, bad signature, wrong issuer, expired)
// leaves the request anonymous.
func ResolveIdentity(verifier IdentityVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, domain.Anonymous())))
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				attrs := []any{"error", err, "request_id", requestcontext.RequestID(ctx)}
				var k kinded
				if errors.As(err, &k) {
					attrs = append(attrs, "kind", k.KindName())
				}
				logger.DebugContext(ctx, "credential rejected, continuing anonymous", attrs...)
				next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, domain.Anonymous())))
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity)
			ctx = requestcontext.WithCredential(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous callers with 401 before the handler runs.
func RequireIdentity(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.Identity(ctx).IsAnonymous() {
				logger.WarnContext(ctx, "unauthorized access - authentication required",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers missing role with 403.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireIdentity(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := requestcontext.Identity(ctx)
			if !identity.HasRole(role) {
				logger.WarnContext(ctx, "forbidden - missing role",
					"role", role,
					"subject", identity.Subject,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
