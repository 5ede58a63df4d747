// Package licenses contiene los DTOs de gestión de licencias.
package licenses

import "time"

// CreateRequest represents the request body for POST /v1/licenses.
type CreateRequest struct {
	ProductID      string     `json:"product_id"`
	MaxActivations int        `json:"max_activations"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// CreateResponse carries the plaintext license key, shown exactly once.
type CreateResponse struct {
	ID             string     `json:"id"`
	Key            string     `json:"key"`
	ProductID      string     `json:"product_id"`
	MaxActivations int        `json:"max_activations"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Summary is the list/detail view of a license.
type Summary struct {
	ID                 string     `json:"id"`
	ProductID          string     `json:"product_id"`
	Active             bool       `json:"active"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	MaxActivations     int        `json:"max_activations"`
	CurrentActivations int        `json:"current_activations"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ListResponse wraps the license listing.
type ListResponse struct {
	Licenses []Summary `json:"licenses"`
}

// ActivationSummary is the per-device view under a license.
type ActivationSummary struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	OriginIP    string    `json:"origin_ip,omitempty"`
	Active      bool      `json:"active"`
	LastCheckAt time.Time `json:"last_check_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivationsResponse wraps the activation listing of a license.
type ActivationsResponse struct {
	LicenseID   string              `json:"license_id"`
	Activations []ActivationSummary `json:"activations"`
}
