// Package validation implementa el motor de validación de credenciales:
// API keys opacas y licencias atadas a dispositivos.
package validation

import (
	"context"
	"errors"
	"time"
)

// Errores del motor. El handler los traduce a los códigos cerrados de la
// API; nunca se filtra el motivo concreto de una credencial inválida.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpired           = errors.New("credential expired")
	ErrCapacityReached   = errors.New("activation capacity reached")
	ErrOriginNotAllowed  = errors.New("origin not allowed")
	ErrNotFound          = errors.New("not found")
)

// KeyResult es la identidad devuelta por una validación de API key exitosa.
type KeyResult struct {
	KeyID      string
	AccountID  string
	UsageCount int64
}

// LicenseCheckIn es la entrada de una validación de licencia. DeviceID
// vacío hace la validación de solo lectura, sin consumir cupo.
type LicenseCheckIn struct {
	Key         string
	DeviceID    string
	Fingerprint string
	OriginIP    string
}

// LicenseResult es la identidad devuelta por una validación de licencia.
// ActivationID queda vacío en el camino de solo lectura.
type LicenseResult struct {
	LicenseID          string
	AccountID          string
	ActivationID       string
	ExpiresAt          *time.Time
	MaxActivations     int
	CurrentActivations int
	FingerprintChanged bool
}

// KeyValidator valida API keys presentadas por clientes.
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, key, originIP string) (*KeyResult, error)
}

// LicenseEngine valida licencias y administra las activaciones por device.
type LicenseEngine interface {
	ValidateLicense(ctx context.Context, in LicenseCheckIn) (*LicenseResult, error)
	RevokeActivation(ctx context.Context, activationID, accountID string) error
}
