package credential

import (
	dErrors "microflix/pkg/domain-errors"
)

// Kind classifies why a credential was rejected.
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindBadSignature Kind = "bad_signature"
	KindWrongIssuer  Kind = "wrong_issuer"
	KindExpired      Kind = "expired"
	KindNotYetValid  Kind = "not_yet_valid"
)

// AuthError is returned for every credential that does not verify.
// All kinds are equivalent to callers; the kind exists for logs and metrics.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "credential " + string(e.Kind) + ": " + e.Err.Error()
	}
	return "credential " + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// DomainCode maps every credential failure to unauthorized.
func (e *AuthError) DomainCode() dErrors.Code { return dErrors.CodeUnauthorized }

func authErr(kind Kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// KindName exposes the kind to callers that only know the error interface.
func (e *AuthError) KindName() string { return string(e.Kind) }
