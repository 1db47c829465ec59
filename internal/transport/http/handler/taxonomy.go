package handler

import (
	"net/http"

	"github.com/socialhub-api/internal/application/taxonomy"
	"github.com/socialhub-api/internal/domain"
)

// TermHandler serves one vocabulary; the router mounts one for tags and one
// for categories.
type TermHandler struct {
	svc  taxonomy.Service
	noun string
}

func NewTermHandler(svc taxonomy.Service, noun string) *TermHandler {
	return &TermHandler{svc: svc, noun: noun}
}

func (h *TermHandler) List(w http.ResponseWriter, r *http.Request) {
	terms, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, h.noun+" retrieved successfully.", terms)
}

func (h *TermHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.TermInput
	if err := decodeJSON(w, r, &in); err != nil {
		httpError(w, err)
		return
	}
	t, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, h.noun+" created successfully.", t)
}
