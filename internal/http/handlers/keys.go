package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/keys"
	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/http/middlewares"
	"github.com/dropDatabas3/keywarden/internal/http/services/credentials"
)

type KeysHandler struct {
	svc *credentials.Service
}

func NewKeysHandler(svc *credentials.Service) *KeysHandler {
	return &KeysHandler{svc: svc}
}

// Register monta las rutas de gestión de API keys. Todas requieren cuenta
// autenticada; el router aplica RequireAuth antes.
func (h *KeysHandler) Register(r chi.Router) {
	r.Post("/v1/keys", h.create)
	r.Get("/v1/keys", h.list)
	r.Get("/v1/keys/{id}", h.get)
	r.Delete("/v1/keys/{id}", h.deactivate)
}

// POST /v1/keys
func (h *KeysHandler) create(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	var in dto.CreateRequest
	if !readStrictJSON(w, r, &in) {
		return
	}

	res, err := h.svc.CreateAPIKey(r.Context(), accountID, in)
	if err != nil {
		writeCredentialsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GET /v1/keys
func (h *KeysHandler) list(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	res, err := h.svc.ListAPIKeys(r.Context(), accountID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/keys/{id}
func (h *KeysHandler) get(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	res, err := h.svc.GetAPIKey(r.Context(), chi.URLParam(r, "id"), accountID)
	if err != nil {
		writeCredentialsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /v1/keys/{id}
func (h *KeysHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	if err := h.svc.DeactivateAPIKey(r.Context(), chi.URLParam(r, "id"), accountID); err != nil {
		writeCredentialsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCredentialsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, credentials.ErrMissingFields):
		apperr.WriteError(w, apperr.ErrMissingFields)
	case errors.Is(err, credentials.ErrInvalidExpiry):
		apperr.WriteError(w, apperr.ErrBadRequest.WithDetail("expires_at must be in the future"))
	case errors.Is(err, credentials.ErrInvalidMaxActs):
		apperr.WriteError(w, apperr.ErrBadRequest.WithDetail("max_activations must be positive"))
	case errors.Is(err, credentials.ErrNotFound):
		apperr.WriteError(w, apperr.ErrNotFound)
	default:
		apperr.WriteError(w, err)
	}
}
