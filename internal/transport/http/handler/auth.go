package handler

import (
	"context"
	"net/http"

	"github.com/socialhub-api/internal/application/auth"
	"github.com/socialhub-api/internal/domain"
)

// AuthPayload is returned by register, login and refresh.
type AuthPayload struct {
	Bearer       string          `json:"bearer"`
	RefreshToken string          `json:"refresh_token"`
	Session      *domain.Session `json:"session"`
}

// CurrentUser is the caller's account with its profile, if any.
type CurrentUser struct {
	*domain.User
	Profile *domain.Profile `json:"profile"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// passwordChanger is the slice of the user service AuthHandler needs.
type passwordChanger interface {
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// AuthHandler handles account entry points and the current-user endpoints.
type AuthHandler struct {
	svc       auth.Service
	passwords passwordChanger
}

func NewAuthHandler(svc auth.Service, passwords passwordChanger) *AuthHandler {
	return &AuthHandler{svc: svc, passwords: passwords}
}

func toPayload(res *auth.Result) AuthPayload {
	return AuthPayload{Bearer: res.Bearer, RefreshToken: res.RefreshToken, Session: res.Session}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User registered successfully. A verification code has been sent.", toPayload(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful.", toPayload(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Token refreshed.", toPayload(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Logged out successfully.", nil)
}

func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	u, p, err := h.svc.Current(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved successfully.", CurrentUser{User: u, Profile: p})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	if err := h.passwords.ChangePassword(r.Context(), claims.UserID(), req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password changed successfully.", nil)
}
