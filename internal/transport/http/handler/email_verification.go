package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialhub-api/internal/application/emaillink"
	"github.com/socialhub-api/internal/domain"
)

type linkVerifier interface {
	Send(ctx context.Context, userID string) (bool, error)
	Confirm(ctx context.Context, userID, hash, signature string) (emaillink.Result, error)
}

// EmailVerificationHandler sends and redeems signed verification links.
type EmailVerificationHandler struct {
	links linkVerifier
}

func NewEmailVerificationHandler(links linkVerifier) *EmailVerificationHandler {
	return &EmailVerificationHandler{links: links}
}

// Verify handles GET /email/verify/{id}/{hash}?signature=...
func (h *EmailVerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	res, err := h.links.Confirm(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "hash"), r.URL.Query().Get("signature"))
	switch {
	case errors.Is(err, emaillink.ErrInvalidSignature):
		writeError(w, http.StatusForbidden, "Invalid signature.")
	case errors.Is(err, emaillink.ErrInvalidLink):
		writeError(w, http.StatusForbidden, "Invalid verification link")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case err != nil:
		httpError(w, err)
	default:
		writeSuccess(w, http.StatusOK, res.Message(), nil)
	}
}

// Resend mails a fresh link; a send is 202, an already verified user 200.
func (h *EmailVerificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	sent, err := h.links.Send(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	if !sent {
		writeSuccess(w, http.StatusOK, "Email already verified", nil)
		return
	}
	writeSuccess(w, http.StatusAccepted, "Verification link sent", nil)
}
