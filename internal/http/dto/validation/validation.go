// Package validation contiene los DTOs de la API pública de validación.
package validation

import "time"

// ValidateKeyRequest represents the request body for POST /v1/validate/key.
type ValidateKeyRequest struct {
	Key string `json:"key"`
}

// ValidateKeyResponse is returned for both valid and invalid keys.
// When invalid, Reason carries the machine-readable code.
type ValidateKeyResponse struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	KeyID      string `json:"key_id,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
	UsageCount int64  `json:"usage_count,omitempty"`
}

// ValidateLicenseRequest represents the request body for
// POST /v1/validate/license. With an empty DeviceID the validation is
// read-only and never consumes an activation slot.
type ValidateLicenseRequest struct {
	Key         string `json:"key"`
	DeviceID    string `json:"device_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// ValidateLicenseResponse reports the outcome of a license check-in.
// ExpiresAt is omitted for perpetual licenses.
type ValidateLicenseResponse struct {
	Valid              bool       `json:"valid"`
	Reason             string     `json:"reason,omitempty"`
	LicenseID          string     `json:"license_id,omitempty"`
	AccountID          string     `json:"account_id,omitempty"`
	ActivationID       string     `json:"activation_id,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	MaxActivations     int        `json:"max_activations,omitempty"`
	CurrentActivations int        `json:"current_activations,omitempty"`
	FingerprintChanged bool       `json:"fingerprint_changed,omitempty"`
}

// RevokeResponse confirms a revoked activation.
type RevokeResponse struct {
	Revoked      bool   `json:"revoked"`
	ActivationID string `json:"activation_id"`
}
