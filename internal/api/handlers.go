// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// Handlers holds HTTP handler dependencies
type Handlers struct {
	svc         *service.Service
	healthCheck func() error
}

// NewHandlers creates new API handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// SetHealthCheck installs a probe run by GET /health.
func (h *Handlers) SetHealthCheck(fn func() error) {
	h.healthCheck = fn
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg})
}

// respondServiceError maps not-found errors to 404 and everything else to 500.
func (h *Handlers) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, types.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondError(w, http.StatusInternalServerError, err.Error())
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(); err != nil {
			h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Error: err.Error()})
			return
		}
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Colorize handles POST /v1/colorize
func (h *Handlers) Colorize(w http.ResponseWriter, r *http.Request) {
	var req ColorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	multicolor := true
	if req.Multicolor != nil {
		multicolor = *req.Multicolor
	}

	out, err := h.svc.Colorize(r.Context(), req.Text, multicolor)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, ColorizeResponse{Output: out})
}

// Scores handles GET /v1/words/{word}
func (h *Handlers) Scores(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(chi.URLParam(r, "word"))
	if word == "" {
		h.respondError(w, http.StatusBadRequest, "word is required")
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	res, err := h.svc.Scores(r.Context(), word, limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, res)
}

// Spectrum handles GET /v1/words/{word}/spectrum
func (h *Handlers) Spectrum(w http.ResponseWriter, r *http.Request) {
	word := strings.TrimSpace(chi.URLParam(r, "word"))
	if word == "" {
		h.respondError(w, http.StatusBadRequest, "word is required")
		return
	}

	mapping, err := intensity.ParseStrategy(r.URL.Query().Get("mapping"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Spectrum(r.Context(), word, mapping)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, res)
}

// Stats handles GET /v1/stats
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}
