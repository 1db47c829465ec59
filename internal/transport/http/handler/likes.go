package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialhub-api/internal/application/like"
)

type LikeHandler struct {
	svc like.Service
}

func NewLikeHandler(svc like.Service) *LikeHandler { return &LikeHandler{svc: svc} }

func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Toggle(r.Context(), chi.URLParam(r, "post"), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Post Like/unlike successfully.", res)
}
