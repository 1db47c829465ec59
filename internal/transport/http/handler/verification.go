package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/socialhub-api/internal/application/otp"
	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/validate"
)

type verifyRequest struct {
	Code string `json:"code"`
}

type codeResender interface {
	ResendCode(ctx context.Context, userID string) (bool, error)
}

// VerificationHandler confirms and re-sends one-time codes.
type VerificationHandler struct {
	otp    otp.Service
	resend codeResender
}

func NewVerificationHandler(otpSvc otp.Service, resend codeResender) *VerificationHandler {
	return &VerificationHandler{otp: otpSvc, resend: resend}
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	tag := fmt.Sprintf("required,number,len=%d", h.otp.CodeLength())
	if err := validate.Var("code", req.Code, tag); err != nil {
		httpError(w, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest))
		return
	}
	res, err := h.otp.Verify(r.Context(), claims.UserID(), req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	if res != otp.Success {
		writeError(w, http.StatusBadRequest, res.Message())
		return
	}
	writeSuccess(w, http.StatusOK, res.Message(), nil)
}

// ResendMobile re-issues the code for the mobile flow.
func (h *VerificationHandler) ResendMobile(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	sent, err := h.resend.ResendCode(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	if !sent {
		writeSuccess(w, http.StatusOK, "Email already verified", nil)
		return
	}
	writeSuccess(w, http.StatusOK, "OTP has been resent to your email.", nil)
}
