package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/licenses"
	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/http/middlewares"
	"github.com/dropDatabas3/keywarden/internal/http/services/credentials"
)

type LicensesHandler struct {
	svc *credentials.Service
}

func NewLicensesHandler(svc *credentials.Service) *LicensesHandler {
	return &LicensesHandler{svc: svc}
}

// Register monta las rutas de gestión de licencias (autenticadas).
func (h *LicensesHandler) Register(r chi.Router) {
	r.Post("/v1/licenses", h.create)
	r.Get("/v1/licenses", h.list)
	r.Get("/v1/licenses/{id}", h.get)
	r.Get("/v1/licenses/{id}/activations", h.activations)
	r.Delete("/v1/licenses/{id}", h.deactivate)
}

// POST /v1/licenses
func (h *LicensesHandler) create(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	var in dto.CreateRequest
	if !readStrictJSON(w, r, &in) {
		return
	}

	res, err := h.svc.CreateLicense(r.Context(), accountID, in)
	if err != nil {
		writeCredentialsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GET /v1/licenses
func (h *LicensesHandler) list(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	res, err := h.svc.ListLicenses(r.Context(), accountID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/licenses/{id}
func (h *LicensesHandler) get(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	res, err := h.svc.GetLicense(r.Context(), chi.URLParam(r, "id"), accountID)
	if err != nil {
		writeCredentialsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /v1/licenses/{id}/activations
func (h *LicensesHandler) activations(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	res, err := h.svc.ListActivations(r.Context(), chi.URLParam(r, "id"), accountID)
	if err != nil {
		writeCredentialsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /v1/licenses/{id}
func (h *LicensesHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())

	if err := h.svc.DeactivateLicense(r.Context(), chi.URLParam(r, "id"), accountID); err != nil {
		writeCredentialsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
