// Package keys contiene los DTOs de gestión de API keys.
package keys

import "time"

// CreateRequest represents the request body for POST /v1/keys.
type CreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IPAllowList []string   `json:"ip_allow_list,omitempty"`
}

// CreateResponse carries the plaintext key. It is shown exactly once;
// only the digest is stored.
type CreateResponse struct {
	ID        string     `json:"id"`
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Summary is the list/detail view of a key. Never includes the digest.
type Summary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IPAllowList []string   `json:"ip_allow_list,omitempty"`
	UsageCount  int64      `json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListResponse wraps the key listing.
type ListResponse struct {
	Keys []Summary `json:"keys"`
}
