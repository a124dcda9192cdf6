package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microflix/pkg/domain"
)

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithoutClaimsValidation(),
	jwt.WithStrictDecoding(),
)

// Verify checks the credential and returns the identity it carries.
//
// Checks run in order: structure, signature (constant-time HMAC comparison),
// issuer, expiry, issued-at. The first failing check decides the AuthError kind.
func Verify(credential string, secret []byte, expectedIssuer string, now time.Time) (domain.Identity, error) {
	claims, err := Decode(credential)
	if err != nil {
		return domain.Anonymous(), err
	}
	if len(secret) == 0 {
		return domain.Anonymous(), authErr(KindBadSignature, ErrEmptySecret)
	}

	_, err = parser.ParseWithClaims(credential, &wireClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return domain.Anonymous(), authErr(KindMalformed, err)
		}
		return domain.Anonymous(), authErr(KindBadSignature, err)
	}

	if claims.Issuer != expectedIssuer {
		return domain.Anonymous(), authErr(KindWrongIssuer, fmt.Errorf("issuer %q", claims.Issuer))
	}
	if !now.Before(claims.ExpiresAt) {
		return domain.Anonymous(), authErr(KindExpired, nil)
	}
	if now.Before(claims.IssuedAt) {
		return domain.Anonymous(), authErr(KindNotYetValid, nil)
	}
	return domain.Identified(claims.Subject, claims.Roles), nil
}

// Verifier binds the shared secret and expected issuer of one deployment.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

func NewVerifier(secret []byte, issuer string, opts ...VerifierOption) *Verifier {
	v := &Verifier{secret: secret, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks credential against the current time.
func (v *Verifier) Verify(credential string) (domain.Identity, error) {
	return Verify(credential, v.secret, v.issuer, v.now())
}
