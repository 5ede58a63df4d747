package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/validation"
	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/http/middlewares"
	valsvc "github.com/dropDatabas3/keywarden/internal/http/services/validation"
)

type ValidateHandler struct {
	keys     valsvc.KeyValidator
	licenses valsvc.LicenseEngine
}

func NewValidateHandler(keys valsvc.KeyValidator, licenses valsvc.LicenseEngine) *ValidateHandler {
	return &ValidateHandler{keys: keys, licenses: licenses}
}

// Register monta la API pública de validación. El router aplica rate
// limiting antes; revoke va aparte porque requiere cuenta autenticada.
func (h *ValidateHandler) Register(r chi.Router) {
	r.Post("/v1/validate/key", h.validateKey)
	r.Post("/v1/validate/license", h.validateLicense)
}

// RegisterRevoke monta la ruta autenticada de revocación.
func (h *ValidateHandler) RegisterRevoke(r chi.Router) {
	r.Post("/v1/activations/{id}/revoke", h.revoke)
}

// POST /v1/validate/key
//
// Las fallas de credencial responden 200 con valid=false y el código en
// reason; los status de error quedan para problemas de request o del
// servidor.
func (h *ValidateHandler) validateKey(w http.ResponseWriter, r *http.Request) {
	var in dto.ValidateKeyRequest
	if !readStrictJSON(w, r, &in) {
		return
	}
	if in.Key == "" {
		apperr.WriteError(w, apperr.ErrMissingFields)
		return
	}

	res, err := h.keys.ValidateAPIKey(r.Context(), in.Key, middlewares.ClientIP(r))
	if err != nil {
		if reason, ok := validationReason(err); ok {
			writeJSON(w, http.StatusOK, dto.ValidateKeyResponse{Valid: false, Reason: reason})
			return
		}
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ValidateKeyResponse{
		Valid:      true,
		KeyID:      res.KeyID,
		AccountID:  res.AccountID,
		UsageCount: res.UsageCount,
	})
}

// POST /v1/validate/license
func (h *ValidateHandler) validateLicense(w http.ResponseWriter, r *http.Request) {
	var in dto.ValidateLicenseRequest
	if !readStrictJSON(w, r, &in) {
		return
	}
	if in.Key == "" {
		apperr.WriteError(w, apperr.ErrMissingFields)
		return
	}

	res, err := h.licenses.ValidateLicense(r.Context(), valsvc.LicenseCheckIn{
		Key:         in.Key,
		DeviceID:    in.DeviceID,
		Fingerprint: in.Fingerprint,
		OriginIP:    middlewares.ClientIP(r),
	})
	if err != nil {
		if reason, ok := validationReason(err); ok {
			writeJSON(w, http.StatusOK, dto.ValidateLicenseResponse{Valid: false, Reason: reason})
			return
		}
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ValidateLicenseResponse{
		Valid:              true,
		LicenseID:          res.LicenseID,
		AccountID:          res.AccountID,
		ActivationID:       res.ActivationID,
		ExpiresAt:          res.ExpiresAt,
		MaxActivations:     res.MaxActivations,
		CurrentActivations: res.CurrentActivations,
		FingerprintChanged: res.FingerprintChanged,
	})
}

// POST /v1/activations/{id}/revoke
func (h *ValidateHandler) revoke(w http.ResponseWriter, r *http.Request) {
	accountID := middlewares.GetAccountID(r.Context())
	activationID := chi.URLParam(r, "id")

	if err := h.licenses.RevokeActivation(r.Context(), activationID, accountID); err != nil {
		if errors.Is(err, valsvc.ErrNotFound) {
			apperr.WriteError(w, apperr.ErrNotFound)
			return
		}
		apperr.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RevokeResponse{Revoked: true, ActivationID: activationID})
}

// validationReason mapea los errores del motor al código cerrado que viaja
// en reason. Cualquier otro error es del servidor y no se traduce.
func validationReason(err error) (string, bool) {
	switch {
	case errors.Is(err, valsvc.ErrInvalidCredential):
		return apperr.ErrInvalidCredential.Code, true
	case errors.Is(err, valsvc.ErrExpired):
		return apperr.ErrExpired.Code, true
	case errors.Is(err, valsvc.ErrCapacityReached):
		return apperr.ErrCapacityReached.Code, true
	case errors.Is(err, valsvc.ErrOriginNotAllowed):
		return apperr.ErrOriginNotAllowed.Code, true
	default:
		return "", false
	}
}
