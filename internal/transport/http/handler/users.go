package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialhub-api/internal/application/user"
	"github.com/socialhub-api/internal/domain"
)

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r, 50)
	users, next, err := h.svc.List(r.Context(), p.limit, p.cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writePage(w, "Users retrieved successfully.", users, p, next)
}

// Create lets an admin or a verified user add an account directly; it does
// not open a session or send a code.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	u, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created successfully.", u)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved successfully.", u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}
	u, err := h.svc.Update(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User updated successfully.", u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User deleted successfully.", nil)
}
