package domain

import "slices"

// Role names carried in credentials.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Identity is the minimal caller identity derived from a verified credential.
// The zero value is the anonymous caller.
type Identity struct {
	Subject string
	Roles   []string
}

// Anonymous returns the identity of a caller without a valid credential.
func Anonymous() Identity { return Identity{} }

// Identified builds an identity for a verified subject.
func Identified(subject string, roles []string) Identity {
	return Identity{Subject: subject, Roles: roles}
}

func (i Identity) IsAnonymous() bool { return i.Subject == "" }

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// UserID parses the subject. Services that key data by user call this once per request.
func (i Identity) UserID() (UserID, error) {
	return ParseUserID(i.Subject)
}
