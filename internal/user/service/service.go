// Package service implements registration, login and profile use cases.
// It is the only component that mints credentials.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/bcrypt"

	"microflix/internal/credential"
	"microflix/internal/user/models"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/email"
	"microflix/pkg/platform/sentinel"
	"microflix/pkg/requestcontext"
)

// Store is the persistence port of the user service.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, address string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Issuer mints a credential for an authenticated user.
type Issuer interface {
	Issue(subject, email string, roles []string, now time.Time) (string, credential.Claims, error)
}

// LoginGuard throttles repeated login failures per email and client IP.
type LoginGuard interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Clear(ctx context.Context, email, ip string) error
}

// RegisterCommand carries already-validated registration input.
type RegisterCommand struct {
	Email       string
	Password    string
	DisplayName string
}

type Service struct {
	store       Store
	issuer      Issuer
	logger      *slog.Logger
	adminEmails map[string]struct{}
	hashCost    int
	guard       LoginGuard
	logins      *prometheus.CounterVec
}

type Option func(*Service)

// WithAdminEmails grants ADMIN at registration to the listed addresses.
func WithAdminEmails(addresses []string) Option {
	return func(s *Service) {
		for _, a := range addresses {
			if n := email.Normalize(a); n != "" {
				s.adminEmails[n] = struct{}{}
			}
		}
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

func WithLoginGuard(guard LoginGuard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

// WithRegisterer registers the login counter on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) {
		s.logins = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "microflix_user_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"})
	}
}

func New(store Store, issuer Issuer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		issuer:      issuer,
		logger:      logger,
		adminEmails: make(map[string]struct{}),
		hashCost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the account and returns a credential for immediate use.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*models.AuthResponse, error) {
	address := email.Normalize(cmd.Email)
	hash, err := s.hashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}
	_, admin := s.adminEmails[address]

	user, err := models.NewUser(address, hash, cmd.DisplayName, admin, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "email already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"admin", admin,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.authResponse(ctx, user)
}

// Login checks the password and records the login time.
// Unknown email, wrong password and inactive accounts are indistinguishable.
func (s *Service) Login(ctx context.Context, address, password string) (*models.AuthResponse, error) {
	address = email.Normalize(address)
	ip := requestcontext.ClientIP(ctx)
	if s.guard != nil {
		if err := s.guard.Check(ctx, address, ip); err != nil {
			s.countLogin("locked")
			return nil, err
		}
	}

	user, err := s.authenticate(ctx, address, password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.countLogin("rejected")
			s.recordFailure(ctx, address, ip)
		}
		return nil, err
	}

	user.RecordLogin(requestcontext.Now(ctx))
	if err := s.store.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login")
	}
	if s.guard != nil {
		if err := s.guard.Clear(ctx, address, ip); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures", "error", err)
		}
	}
	s.countLogin("accepted")
	return s.authResponse(ctx, user)
}

func (s *Service) authenticate(ctx context.Context, address, password string) (*models.User, error) {
	user, err := s.store.FindByEmail(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if err := verifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return user, nil
}

func (s *Service) recordFailure(ctx context.Context, address, ip string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.RecordFailure(ctx, address, ip); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) Me(ctx context.Context, id domain.UserID) (*models.Profile, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, displayName string) (*models.Profile, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Rename(displayName, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	profile := user.Profile()
	return &profile, nil
}

// ChangePassword replaces the hash once the old password is confirmed.
// Credentials issued earlier stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword string) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := verifyPassword(oldPassword, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return dErrors.New(dErrors.CodeValidation, "old password is incorrect")
		}
		return err
	}
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.ChangePasswordHash(hash, requestcontext.Now(ctx))
	if err := s.store.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to change password")
	}
	s.logger.InfoContext(ctx, "password changed",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) load(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) authResponse(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	token, _, err := s.issuer.Issue(user.ID.String(), user.Email, user.Roles, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue credential")
	}
	return &models.AuthResponse{
		Token:       token,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       user.Profile().Roles,
	}, nil
}

func (s *Service) countLogin(outcome string) {
	if s.logins != nil {
		s.logins.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) hashPassword(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash password")
	}
	return string(hashed), nil
}

func verifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify password")
	}
	return nil
}
