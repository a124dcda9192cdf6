// Package credential mints and verifies the signed, self-contained credentials
// issued by the user service and checked independently by every other service.
//
// Credentials are compact HS256 JWS tokens: base64url(header) "." base64url(claims)
// "." base64url(HMAC-SHA-256 signature), without padding.
package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	pstrings "microflix/pkg/platform/strings"
)

// Claims is the content of a credential. Times have second precision and the
// credential is valid for now in [IssuedAt, ExpiresAt).
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Roles     []string
	Email     string
}

// wireClaims is the JSON claim set.
type wireClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func toWire(c Claims) wireClaims {
	return wireClaims{
		Email: c.Email,
		Roles: pstrings.SortedSet(c.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
}

func fromWire(w *wireClaims) Claims {
	c := Claims{
		Subject: w.Subject,
		Issuer:  w.Issuer,
		Roles:   pstrings.SortedSet(w.Roles),
		Email:   w.Email,
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time.UTC()
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time.UTC()
	}
	return c
}
