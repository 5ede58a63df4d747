package core

import (
	"context"
	"time"
)

// Repository is the storage contract the validation engine runs against.
// Implementations must make ActivateDevice and RevokeActivation atomic:
// the capacity check and the counter mutation happen as one unit, never as
// separate read-then-write steps.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Accounts
	CreateAccount(ctx context.Context, a *Account) error
	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByLogin(ctx context.Context, usernameOrEmail string) (*Account, error)
	// UpdateLoginState persists the lockout counters. lockedUntil nil clears
	// a previous lock.
	UpdateLoginState(ctx context.Context, accountID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error

	// API keys
	CreateAPIKey(ctx context.Context, k *APIKey) error
	GetAPIKeyByDigest(ctx context.Context, digest string) (*APIKey, *Account, error)
	GetAPIKeyByID(ctx context.Context, id, accountID string) (*APIKey, error)
	ListAPIKeys(ctx context.Context, accountID string) ([]APIKey, error)
	DeactivateAPIKey(ctx context.Context, id, accountID string) error
	// TouchAPIKeyUsage bumps usage_count and last_used. Best effort: callers
	// ignore lost updates, the counter is informational.
	TouchAPIKeyUsage(ctx context.Context, id string, at time.Time) error

	// Licenses
	CreateLicense(ctx context.Context, l *License) error
	GetLicenseByDigest(ctx context.Context, digest string) (*License, *Account, error)
	GetLicenseByID(ctx context.Context, id, accountID string) (*License, error)
	ListLicenses(ctx context.Context, accountID string) ([]License, error)
	DeactivateLicense(ctx context.Context, id, accountID string) error

	// Activations
	GetActivation(ctx context.Context, licenseID, deviceID string) (*Activation, error)
	// ActivateDevice inserts the activation and increments the license
	// counter in a single transaction. Returns ErrCapacity when the license
	// is full and ErrConflict when (license, device) is already active.
	ActivateDevice(ctx context.Context, a *Activation) error
	// TouchActivation updates last_check and, when fp is non-empty, the
	// recorded fingerprint.
	TouchActivation(ctx context.Context, id string, at time.Time, fp string) error
	ListActivations(ctx context.Context, licenseID string) ([]Activation, error)
	// RevokeActivation deactivates the activation owned (via its license) by
	// accountID and decrements the counter exactly once. A second call for
	// the same activation returns ErrNotFound.
	RevokeActivation(ctx context.Context, id, accountID string) error

	// Lockout forensics / audit
	AppendFailedAttempt(ctx context.Context, fa *FailedAttempt) error
	AppendSecurityEvent(ctx context.Context, ev *SecurityEvent) error
	ListSecurityEvents(ctx context.Context, limit int) ([]SecurityEvent, error)
	ListAccounts(ctx context.Context, limit int) ([]Account, error)

	// Sessions
	CreateSession(ctx context.Context, s *Session) error
}
