// Package models holds registered users and the auth/profile response shapes.
package models

import (
	"slices"
	"strings"
	"time"

	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/email"
	pstrings "microflix/pkg/platform/strings"
)

const MaxDisplayNameLength = 100

// User is a registered account.
//
// Invariants:
//   - Email is lower-case and unique
//   - Roles always contains RoleUser
//   - PasswordHash is a bcrypt hash, never the plaintext
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	DisplayName  string
	Roles        []string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// NewUser builds an active user. An empty display name is derived from the email.
func NewUser(address, passwordHash, displayName string, admin bool, now time.Time) (*User, error) {
	address = email.Normalize(address)
	if !email.Valid(address) {
		return nil, dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "password hash is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email.DeriveDisplayName(address)
	}
	if len([]rune(displayName)) > MaxDisplayNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "displayName must be at most 100 characters")
	}

	roles := []string{domain.RoleUser}
	if admin {
		roles = append(roles, domain.RoleAdmin)
	}

	return &User{
		ID:           domain.NewUserID(),
		Email:        address,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Roles:        pstrings.SortedSet(roles),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, domain.RoleAdmin)
}

func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

func (u *User) Rename(displayName string, now time.Time) {
	u.DisplayName = displayName
	u.UpdatedAt = now
}

func (u *User) ChangePasswordHash(hash string, now time.Time) {
	u.PasswordHash = hash
	u.UpdatedAt = now
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token       string   `json:"token"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

// Profile is the caller's own view of their account.
type Profile struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Roles:       slices.Clone(u.Roles),
	}
}
