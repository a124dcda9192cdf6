package testutil

import (
	"net/http"

	"microflix/pkg/domain"
	"microflix/pkg/requestcontext"
)

// WithIdentity stores identity on the request context as ResolveIdentity
// would after verifying a credential.
func WithIdentity(req *http.Request, identity domain.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), identity))
}

// WithCredential also stores the raw credential the gateway forwards downstream.
func WithCredential(req *http.Request, identity domain.Identity, credential string) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), identity)
	ctx = requestcontext.WithCredential(ctx, credential)
	return req.WithContext(ctx)
}
