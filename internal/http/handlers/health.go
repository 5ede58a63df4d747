package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

type HealthHandler struct {
	repo    core.Repository
	version string
}

func NewHealthHandler(repo core.Repository, version string) *HealthHandler {
	return &HealthHandler{repo: repo, version: version}
}

func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
}

// GET /healthz — vivo, sin tocar el store.
func (h *HealthHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// GET /readyz — listo para servir: el store responde.
func (h *HealthHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		apperr.WriteError(w, apperr.ErrServiceUnavailable.WithCause(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
