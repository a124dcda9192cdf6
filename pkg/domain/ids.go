package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "microflix/pkg/domain-errors"
)

const maxMovieIDLen = 19

// UserID identifies a registered user. Never reused, never nil once issued.
type UserID uuid.UUID

// NewUserID generates a fresh user id.
func NewUserID() UserID { return UserID(uuid.New()) }

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses a credential subject or path segment into a UserID.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return UserID{}, dErrors.New(dErrors.CodeValidation, "user id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeValidation, "user id must be a valid UUID")
	}
	if u == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeValidation, "user id must not be nil")
	}
	return UserID(u), nil
}

// MovieID is the catalog's numeric movie identifier.
type MovieID int64

func (id MovieID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseMovieID accepts only decimal digits describing a positive int64.
func ParseMovieID(s string) (MovieID, error) {
	if s == "" || len(s) > maxMovieIDLen {
		return 0, dErrors.New(dErrors.CodeValidation, "movie id must be a positive integer")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, dErrors.New(dErrors.CodeValidation, "movie id must be a positive integer")
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "movie id must be a positive integer")
	}
	return MovieID(n), nil
}
