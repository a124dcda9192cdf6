package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microflix/internal/user/models"
	"microflix/internal/user/service"
	"microflix/pkg/domain"
	dErrors "microflix/pkg/domain-errors"
	"microflix/pkg/platform/httputil"
	"microflix/pkg/platform/middleware/auth"
	"microflix/pkg/requestcontext"
)

// Service defines the account operations used by the handler.
type Service interface {
	Register(ctx context.Context, cmd service.RegisterCommand) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context, id domain.UserID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id domain.UserID, displayName string) (*models.Profile, error)
	ChangePassword(ctx context.Context, id domain.UserID, oldPassword, newPassword string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts auth, profile and admin endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity(h.logger))
		r.Get("/users/me", h.HandleMe)
		r.Patch("/users/me", h.HandleUpdateProfile)
		r.Patch("/users/me/password", h.HandleChangePassword)
	})

	r.With(auth.RequireRole(domain.RoleAdmin, h.logger)).Get("/admin/ping", h.HandleAdminPing)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	resp, err := h.service.Register(ctx, service.RegisterCommand{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.fail(w, r, "register failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	resp, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	profile, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "load profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	profile, err := h.service.UpdateProfile(ctx, userID, req.DisplayName)
	if err != nil {
		h.fail(w, r, "update profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ChangePasswordRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		h.fail(w, r, "change password failed", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) HandleAdminPing(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "area": "admin"})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, err := requestcontext.Identity(r.Context()).UserID()
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "credential subject is not a user id"))
		return domain.UserID{}, false
	}
	return userID, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeConflict, dErrors.CodeUnauthorized, dErrors.CodeRateLimited:
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
