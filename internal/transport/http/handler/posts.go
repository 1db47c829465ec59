package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/application/post"
	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/validate"
)

// PostHandler handles post endpoints. Create and update accept either JSON
// or multipart with an "image" file.
type PostHandler struct {
	svc post.Service
}

func NewPostHandler(svc post.Service) *PostHandler { return &PostHandler{svc: svc} }

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r, post.DefaultPageSize)
	posts, next, err := h.svc.Feed(r.Context(), p.limit, p.cursor)
	if err != nil {
		httpError(w, err)
		return
	}
	writePage(w, "Posts retrieved successfully.", posts, p, next)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "post"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Post retrieved successfully.", v)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreatePostRequest
	var image *media.Upload
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			httpError(w, err)
			return
		}
		if v := formValue(r, "content"); v != nil {
			req.Content = *v
		}
		req.Category = formValue(r, "category")
		req.Tags, _ = formList(r, "tags")
		up, closeFile, err := formImage(r, "image")
		defer closeFile()
		if err != nil {
			httpError(w, err)
			return
		}
		image = up
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}

	v, err := h.svc.Create(r.Context(), claims.UserID(), req, image)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Post created successfully.", v)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.UpdatePostRequest
	var image *media.Upload
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			httpError(w, err)
			return
		}
		req.Content = formValue(r, "content")
		req.Category = formValue(r, "category")
		if tags, sent := formList(r, "tags"); sent {
			req.Tags = tags
		}
		up, closeFile, err := formImage(r, "image")
		defer closeFile()
		if err != nil {
			httpError(w, err)
			return
		}
		image = up
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, err)
		return
	}

	v, err := h.svc.Update(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "post"), req, image)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Post updated successfully.", v)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID(), claims.Role, chi.URLParam(r, "post")); err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Post deleted successfully.", nil)
}
