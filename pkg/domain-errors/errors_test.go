package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{}

func (codedErr) Error() string    { return "branch movie failed" }
func (codedErr) DomainCode() Code { return CodeTimeout }

func TestHasCode(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("direct", func(t *testing.T) {
		assert.True(t, HasCode(New(CodeNotFound, "movie not found"), CodeNotFound))
	})

	t.Run("nested in wrap chain", func(t *testing.T) {
		err := fmt.Errorf("get movie: %w", Wrap(Wrap(cause, CodeUnavailable, "downstream"), CodeInternal, "outer"))
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.True(t, HasCode(err, CodeInternal))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, HasCode(cause, CodeInternal))
	})
}

func TestResolve(t *testing.T) {
	code, msg := Resolve(fmt.Errorf("wrapped: %w", New(CodeValidation, "movie id must be numeric")))
	assert.Equal(t, CodeValidation, code)
	assert.Equal(t, "movie id must be numeric", msg)

	code, msg = Resolve(fmt.Errorf("aggregate: %w", codedErr{}))
	assert.Equal(t, CodeTimeout, code)
	assert.Equal(t, "aggregate: branch movie failed", msg)

	code, _ = Resolve(errors.New("boom"))
	assert.Equal(t, CodeInternal, code)
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeUnavailable:  http.StatusBadGateway,
		CodeTimeout:      http.StatusGatewayTimeout,
		CodeRateLimited:  http.StatusTooManyRequests,
		Code("unknown"):  http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, ToHTTPStatus(code), string(code))
	}
}
