package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret  = errors.New("signing secret is empty")
	ErrEmptySubject = errors.New("subject is empty")
	// ErrSubSecondTime rejects windows the wire format cannot carry exactly.
	ErrSubSecondTime = errors.New("issued-at and expiry must be whole seconds")
)

// Mint signs claims with secret. Equal claims and secret always produce the same
// credential; roles are canonicalized before encoding. IssuedAt and ExpiresAt
// must be whole seconds so the signed window is exactly the claimed one.
func Mint(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if claims.Subject == "" {
		return "", ErrEmptySubject
	}
	if !wholeSecond(claims.IssuedAt) || !wholeSecond(claims.ExpiresAt) {
		return "", ErrSubSecondTime
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, toWire(claims))
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Decode reads the claims without checking the signature, issuer or validity window.
// Only Verify establishes trust.
func Decode(credential string) (Claims, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &wc); err != nil {
		return Claims{}, authErr(KindMalformed, err)
	}
	if wc.Subject == "" || wc.IssuedAt == nil || wc.ExpiresAt == nil {
		return Claims{}, authErr(KindMalformed, errors.New("missing sub, iat or exp"))
	}
	return fromWire(&wc), nil
}

func wholeSecond(t time.Time) bool { return t.Nanosecond() == 0 }
