package credential

import (
	"time"
)

// Issuer mints credentials for the user service.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewIssuer(secret []byte, issuer string, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue mints a credential valid from now for the configured TTL.
// Both ends of the window are truncated to the second.
func (i *Issuer) Issue(subject, email string, roles []string, now time.Time) (string, Claims, error) {
	issuedAt := now.UTC().Truncate(time.Second)
	claims := Claims{
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(i.ttl).Truncate(time.Second),
		Roles:     roles,
		Email:     email,
	}
	token, err := Mint(claims, i.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}
