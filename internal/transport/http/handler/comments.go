package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialhub-api/internal/application/comment"
	"github.com/socialhub-api/internal/domain"
)

// CommentHandler handles comments. Listing and creating are nested under a
// post; the rest address a comment directly.
type CommentHandler struct {
	svc comment.Service
}

func NewCommentHandler(svc comment.Service) *CommentHandler { return &CommentHandler{svc: svc} }

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r, comment.DefaultPageSize)
	comments, next, err := h.svc.List(r.Context(), chi.URLParam(r, "post"), p.limit, p.cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writePage(w, "Comments retrieved successfully.", comments, p, next)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), claims.UserID(), chi.URLParam(r, "post"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Comment created successfully.", c)
}

func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comment retrieved successfully.", c)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comment updated successfully.", c)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Comment deleted successfully.", nil)
}
