package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microflix/internal/credential"
	"microflix/internal/rating/models"
	"microflix/internal/rating/service"
	"microflix/internal/rating/store"
	"microflix/pkg/domain"
	"microflix/pkg/platform/middleware/auth"
	"microflix/pkg/testutil"
)

var (
	secret = []byte("ratings-test-secret")
	issuer = "microflix-users"
)

func newRatingRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.New(store.NewInMemoryRatingStore(), store.NewInMemoryWatchlistStore(), nil, logger)

	r := chi.NewRouter()
	r.Use(auth.ResolveIdentity(credential.NewVerifier(secret, issuer), logger))
	r.Route("/api/v1", func(r chi.Router) {
		New(svc, logger).Register(r)
	})
	return r
}

func bearerFor(t *testing.T, userID domain.UserID) string {
	t.Helper()
	token, _, err := credential.NewIssuer(secret, issuer, time.Hour).Issue(userID.String(), "", []string{domain.RoleUser}, time.Now())
	require.NoError(t, err)
	return "Bearer " + token
}

func authed(req *http.Request, bearer string) *http.Request {
	req.Header.Set("Authorization", bearer)
	return req
}

func TestRatingLifecycle(t *testing.T) {
	router := newRatingRouter(t)
	bearer := bearerFor(t, domain.NewUserID())

	testutil.Given(t, "a user without a rating for movie 42", func(t *testing.T) {
		rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/ratings/movie/42/me"), bearer))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/ratings/movie/42/summary"))
		testutil.AssertStatusOK(t, rr)
		summary := testutil.UnmarshalResponse[models.Summary](t, rr)
		assert.Nil(t, summary.Average)
		assert.Zero(t, summary.Count)

		testutil.When(t, "they rate it 8.5", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/ratings", map[string]any{"movieId": 42, "rate": 8.5})
			rr := testutil.DoRequest(router, authed(req, bearer))
			testutil.AssertStatus(t, rr, http.StatusCreated)

			testutil.Then(t, "their rating and the summary reflect it", func(t *testing.T) {
				rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/ratings/movie/42/me"), bearer))
				testutil.AssertStatusOK(t, rr)
				mine := testutil.UnmarshalResponse[models.RatingResponse](t, rr)
				assert.Equal(t, 8.5, mine.Rate)

				rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/ratings/movie/42/summary"))
				summary := testutil.UnmarshalResponse[models.Summary](t, rr)
				require.NotNil(t, summary.Average)
				assert.Equal(t, 8.5, *summary.Average)
				assert.Equal(t, int64(1), summary.Count)
			})
		})

		testutil.When(t, "they patch and then delete it", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPatch, "/api/v1/ratings", map[string]any{"movieId": 42, "rate": 6})
			rr := testutil.DoRequest(router, authed(req, bearer))
			testutil.AssertStatusOK(t, rr)
			testutil.AssertJSONContains(t, rr, "rate", 6.0)

			rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodDelete, "/api/v1/ratings/42"), bearer))
			testutil.AssertStatus(t, rr, http.StatusNoContent)

			rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodDelete, "/api/v1/ratings/42"), bearer))
			testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
		})
	})
}

func TestWritesRequireIdentity(t *testing.T) {
	router := newRatingRouter(t)
	body := map[string]any{"movieId": 42, "rate": 8.5}

	t.Run("no credential", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/ratings", body))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("tampered credential is treated as anonymous", func(t *testing.T) {
		bearer := bearerFor(t, domain.NewUserID())
		tampered := []byte(bearer)
		i := len(tampered) - 2
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		rr := testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/ratings", body), string(tampered)))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("watchlist put", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPut, "/api/v1/engagements/watchlist/42"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func TestRateValidation(t *testing.T) {
	router := newRatingRouter(t)
	bearer := bearerFor(t, domain.NewUserID())

	cases := map[string]map[string]any{
		"rate above range": {"movieId": 42, "rate": 10.5},
		"rate below range": {"movieId": 42, "rate": 0.5},
		"missing movie id": {"rate": 5},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/ratings", body)
			rr := testutil.DoRequest(router, authed(req, bearer))
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		})
	}

	t.Run("update without rating is 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPatch, "/api/v1/ratings", map[string]any{"movieId": 7, "rate": 5})
		rr := testutil.DoRequest(router, authed(req, bearer))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestWatchlistEndpoints(t *testing.T) {
	router := newRatingRouter(t)
	bearer := bearerFor(t, domain.NewUserID())

	rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/engagements/watchlist/42/me"), bearer))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	for range 2 {
		rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodPut, "/api/v1/engagements/watchlist/42"), bearer))
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	}

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/engagements/watchlist/42/me"), bearer))
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "true", string(bytes.TrimSpace(rr.Body.Bytes())))

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/engagements/watchlist"), bearer))
	testutil.AssertStatusOK(t, rr)
	items := testutil.UnmarshalResponse[[]models.WatchlistItemResponse](t, rr)
	require.Len(t, *items, 1)
	assert.Equal(t, models.EngagementWatchlist, (*items)[0].Type)

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodDelete, "/api/v1/engagements/watchlist/42"), bearer))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/v1/engagements/watchlist/42/me"), bearer))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestInvalidMovieIDIs400(t *testing.T) {
	router := newRatingRouter(t)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/ratings/movie/-3/summary"))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}
