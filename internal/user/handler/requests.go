package handler

import (
	"strings"

	"microflix/internal/user/models"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/email"
)

// bcrypt only reads the first 72 bytes.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !email.Valid(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	if err := validatePassword("password", r.Password); err != nil {
		return err
	}
	if len([]rune(r.DisplayName)) > models.MaxDisplayNameLength {
		return dErrors.New(dErrors.CodeValidation, "displayName must be at most 100 characters")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = email.Normalize(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *UpdateProfileRequest) Validate() error {
	n := len([]rune(r.DisplayName))
	if n < 1 || n > models.MaxDisplayNameLength {
		return dErrors.New(dErrors.CodeValidation, "displayName must be 1-100 characters")
	}
	return nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Normalize() {}

func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "oldPassword is required")
	}
	return validatePassword("newPassword", r.NewPassword)
}

func validatePassword(field, password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, field+" must be 8-72 bytes")
	}
	return nil
}
