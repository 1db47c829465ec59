package handler

import (
	"net/http"

	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/application/profile"
	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/validate"
)

// ProfileHandler serves the caller's own profile. Updates accept JSON or
// multipart with an "avatar" file.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	v, err := h.svc.Get(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile retrieved successfully.", v)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	var avatar *media.Upload
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			httpError(w, err)
			return
		}
		req.Username = formValue(r, "username")
		req.Bio = formValue(r, "bio")
		req.Website = formValue(r, "website")
		up, closeFile, err := formImage(r, "avatar")
		defer closeFile()
		if err != nil {
			httpError(w, err)
			return
		}
		avatar = up
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}

	v, err := h.svc.Update(r.Context(), claims.UserID(), req, avatar)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile updated successfully.", v)
}
