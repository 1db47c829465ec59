package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/socialhub-api/internal/domain"
	jwtinfra "github.com/socialhub-api/internal/infrastructure/jwt"
	"github.com/socialhub-api/internal/pkg/validate"
	"github.com/socialhub-api/internal/transport/http/middleware"
)

const maxJSONBody = 1 << 20

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Meta describes one page of a cursor-paginated list.
type Meta struct {
	CurrentPage int    `json:"current_page"`
	PerPage     int    `json:"per_page"`
	NextCursor  string `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, msg string, data interface{}) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   msg,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writePage(w http.ResponseWriter, msg string, data interface{}, p page, next string) {
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Message:   msg,
		Data:      data,
		Meta:      &Meta{CurrentPage: p.number, PerPage: p.limit, NextCursor: next},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// httpError maps a service error onto a status code. Unknown errors are
// logged and reported without detail.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnverified):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}

// actor returns the caller's claims, answering 401 itself when absent.
func actor(w http.ResponseWriter, r *http.Request) (*jwtinfra.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
	}
	return claims, ok
}

type page struct {
	number int
	limit  int
	cursor string
}

// parsePage reads page, per_page and cursor. Services clamp the limit, so
// zero means their default.
func parsePage(r *http.Request, defaultLimit int) page {
	q := r.URL.Query()
	p := page{cursor: q.Get("cursor")}
	p.number, _ = strconv.Atoi(q.Get("page"))
	if p.number < 1 {
		p.number = 1
	}
	p.limit, _ = strconv.Atoi(q.Get("per_page"))
	if p.limit < 1 || p.limit > 50 {
		p.limit = defaultLimit
	}
	return p
}
