package credential

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "microflix/pkg/domain-errors"
)

var (
	secret   = []byte("test-signing-secret")
	issuer   = "microflix-users"
	issuedAt = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
)

func testClaims() Claims {
	return Claims{
		Subject:   uuid.NewString(),
		Issuer:    issuer,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
		Roles:     []string{"USER"},
		Email:     "neo@example.com",
	}
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, kind, authErr.Kind)
	code, _ := dErrors.Resolve(err)
	assert.Equal(t, dErrors.CodeUnauthorized, code)
}

func TestMint(t *testing.T) {
	t.Run("three base64url segments without padding", func(t *testing.T) {
		token, err := Mint(testClaims(), secret)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		for _, p := range parts {
			assert.NotContains(t, p, "=")
			_, err := base64.RawURLEncoding.DecodeString(p)
			assert.NoError(t, err)
		}
		header, _ := base64.RawURLEncoding.DecodeString(parts[0])
		assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, string(header))
	})

	t.Run("deterministic for equal claims regardless of role order", func(t *testing.T) {
		a := testClaims()
		a.Roles = []string{"USER", "ADMIN", "USER"}
		b := a
		b.Roles = []string{"ADMIN", "USER"}

		ta, err := Mint(a, secret)
		require.NoError(t, err)
		tb, err := Mint(b, secret)
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
	})

	t.Run("rejects empty secret and subject", func(t *testing.T) {
		_, err := Mint(testClaims(), nil)
		assert.ErrorIs(t, err, ErrEmptySecret)

		c := testClaims()
		c.Subject = ""
		_, err = Mint(c, secret)
		assert.ErrorIs(t, err, ErrEmptySubject)
	})

	t.Run("rejects windows finer than a second", func(t *testing.T) {
		c := testClaims()
		c.ExpiresAt = c.IssuedAt.Add(1500 * time.Millisecond)
		_, err := Mint(c, secret)
		assert.ErrorIs(t, err, ErrSubSecondTime)

		c = testClaims()
		c.IssuedAt = c.IssuedAt.Add(250 * time.Millisecond)
		_, err = Mint(c, secret)
		assert.ErrorIs(t, err, ErrSubSecondTime)
	})
}

func TestIssuerWindowMatchesCredential(t *testing.T) {
	now := issuedAt.Add(300 * time.Millisecond)
	token, claims, err := NewIssuer(secret, issuer, 1500*time.Millisecond).Issue(uuid.NewString(), "", []string{"USER"}, now)
	require.NoError(t, err)
	assert.Equal(t, issuedAt, claims.IssuedAt)
	assert.Equal(t, issuedAt.Add(time.Second), claims.ExpiresAt)

	// every instant inside the returned window verifies, the end does not
	_, err = Verify(token, secret, issuer, claims.ExpiresAt.Add(-time.Millisecond))
	assert.NoError(t, err)
	_, err = Verify(token, secret, issuer, claims.ExpiresAt)
	requireKind(t, err, KindExpired)
}

func TestVerifyCollapsesDuplicateRoles(t *testing.T) {
	// a credential signed by another minter holding the same secret
	wire := wireClaims{
		Roles: []string{"USER", "ADMIN", "USER"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(secret)
	require.NoError(t, err)

	id, err := Verify(token, secret, issuer, issuedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "USER"}, id.Roles)
}

func TestDecode(t *testing.T) {
	t.Run("returns claims without verifying", func(t *testing.T) {
		c := testClaims()
		token, err := Mint(c, []byte("some-other-secret"))
		require.NoError(t, err)

		got, err := Decode(token)
		require.NoError(t, err)
		assert.Equal(t, c.Subject, got.Subject)
		assert.Equal(t, c.Issuer, got.Issuer)
		assert.Equal(t, c.Email, got.Email)
		assert.Equal(t, c.IssuedAt.Unix(), got.IssuedAt.Unix())
		assert.Equal(t, c.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	})

	for _, bad := range []string{"", "not-a-token", "a.b", "a.b.c.d", "e30.e30.sig", "!!!.???.***"} {
		t.Run("malformed "+bad, func(t *testing.T) {
			_, err := Decode(bad)
			requireKind(t, err, KindMalformed)
		})
	}
}

func TestVerify(t *testing.T) {
	c := testClaims()
	token, err := Mint(c, secret)
	require.NoError(t, err)

	t.Run("valid credential yields identity", func(t *testing.T) {
		id, err := Verify(token, secret, issuer, issuedAt.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, c.Subject, id.Subject)
		assert.Equal(t, []string{"USER"}, id.Roles)
	})

	t.Run("round trip holds across the whole validity window", func(t *testing.T) {
		for _, offset := range []time.Duration{0, time.Second, 59 * time.Minute, time.Hour - time.Second} {
			id, err := Verify(token, secret, issuer, issuedAt.Add(offset))
			require.NoError(t, err, "offset %s", offset)
			assert.Equal(t, c.Subject, id.Subject)
		}
	})

	t.Run("wrong secret is a bad signature", func(t *testing.T) {
		_, err := Verify(token, []byte("other-secret"), issuer, issuedAt)
		requireKind(t, err, KindBadSignature)
	})

	t.Run("single byte change in the signature never verifies", func(t *testing.T) {
		parts := strings.Split(token, ".")
		sig := []byte(parts[2])
		for i := 0; i < len(sig)-1; i++ {
			tampered := append([]byte(nil), sig...)
			if tampered[i] == 'A' {
				tampered[i] = 'B'
			} else {
				tampered[i] = 'A'
			}
			_, err := Verify(parts[0]+"."+parts[1]+"."+string(tampered), secret, issuer, issuedAt)
			var authErr *AuthError
			require.ErrorAs(t, err, &authErr, "position %d", i)
		}
	})

	t.Run("altered claims break the signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := testClaims()
		forged.Roles = []string{"ADMIN"}
		forgedToken, err := Mint(forged, []byte("attacker"))
		require.NoError(t, err)
		payload := strings.Split(forgedToken, ".")[1]

		_, err = Verify(parts[0]+"."+payload+"."+parts[2], secret, issuer, issuedAt)
		requireKind(t, err, KindBadSignature)
	})

	t.Run("other algorithms are rejected", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, toWire(c)).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = Verify(none, secret, issuer, issuedAt)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)

		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, toWire(c)).SignedString(secret)
		require.NoError(t, err)
		_, err = Verify(hs512, secret, issuer, issuedAt)
		requireKind(t, err, KindBadSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := Verify(token, secret, "someone-else", issuedAt)
		requireKind(t, err, KindWrongIssuer)
	})

	t.Run("expiry boundary", func(t *testing.T) {
		_, err := Verify(token, secret, issuer, c.ExpiresAt.Add(-time.Second))
		require.NoError(t, err)

		_, err = Verify(token, secret, issuer, c.ExpiresAt)
		requireKind(t, err, KindExpired)

		_, err = Verify(token, secret, issuer, c.ExpiresAt.Add(time.Second))
		requireKind(t, err, KindExpired)
	})

	t.Run("issued in the future", func(t *testing.T) {
		_, err := Verify(token, secret, issuer, issuedAt.Add(-time.Second))
		requireKind(t, err, KindNotYetValid)
	})

	t.Run("signature is checked before issuer and expiry", func(t *testing.T) {
		_, err := Verify(token, []byte("other-secret"), "someone-else", c.ExpiresAt.Add(time.Hour))
		requireKind(t, err, KindBadSignature)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := Verify("garbage", secret, issuer, issuedAt)
		requireKind(t, err, KindMalformed)
		assert.False(t, errors.Is(err, ErrEmptySecret))
	})
}

func TestVerifier(t *testing.T) {
	now := issuedAt.Add(time.Minute)
	v := NewVerifier(secret, issuer, WithClock(func() time.Time { return now }))
	token, _, err := NewIssuer(secret, issuer, time.Hour).Issue(uuid.NewString(), "trinity@example.com", []string{"USER"}, issuedAt)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.False(t, id.IsAnonymous())

	now = issuedAt.Add(2 * time.Hour)
	_, err = v.Verify(token)
	requireKind(t, err, KindExpired)
}
