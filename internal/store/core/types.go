package core

import "time"

type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Active         bool       `json:"active"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type APIKey struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	KeyDigest   string     `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IPAllowList []string   `json:"ip_allow_list,omitempty"`
	UsageCount  int64      `json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type License struct {
	ID                 string     `json:"id"`
	AccountID          string     `json:"account_id"`
	ProductID          string     `json:"product_id"`
	KeyDigest          string     `json:"-"`
	Active             bool       `json:"active"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	MaxActivations     int        `json:"max_activations"`
	CurrentActivations int        `json:"current_activations"`
	CreatedAt          time.Time  `json:"created_at"`
}

type Activation struct {
	ID          string    `json:"id"`
	LicenseID   string    `json:"license_id"`
	DeviceID    string    `json:"device_id"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	OriginIP    string    `json:"origin_ip,omitempty"`
	Active      bool      `json:"active"`
	LastCheckAt time.Time `json:"last_check_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// FailedAttempt is append-only; AccountID is empty when the presented
// identifier matched no account.
type FailedAttempt struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id,omitempty"`
	Username  string    `json:"username"`
	OriginIP  string    `json:"origin_ip"`
	CreatedAt time.Time `json:"created_at"`
}

type SecurityEvent struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	OriginIP  string    `json:"origin_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"-"`
	OriginIP  string    `json:"origin_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
