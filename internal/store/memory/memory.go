// Package memory implements core.Repository in-process. It backs the
// `storage.driver: memory` dev mode and the engine's unit tests. A single
// mutex stands in for the row locks the Postgres store relies on, so the
// activation capacity invariant holds under concurrent callers here too.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/keywarden/internal/store/core"
)

type Store struct {
	mu sync.Mutex

	accounts    map[string]*core.Account
	apiKeys     map[string]*core.APIKey
	licenses    map[string]*core.License
	activations map[string]*core.Activation
	attempts    []core.FailedAttempt
	events      []core.SecurityEvent
	sessions    map[string]*core.Session
}

func New() *Store {
	return &Store{
		accounts:    map[string]*core.Account{},
		apiKeys:     map[string]*core.APIKey{},
		licenses:    map[string]*core.License{},
		activations: map[string]*core.Activation{},
		sessions:    map[string]*core.Session{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// ─── Accounts ───

func (s *Store) CreateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.accounts {
		if strings.EqualFold(ex.Username, a.Username) || strings.EqualFold(ex.Email, a.Email) {
			return core.ErrConflict
		}
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *Store) GetAccountByID(_ context.Context, id string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *Store) GetAccountByLogin(_ context.Context, usernameOrEmail string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Username, usernameOrEmail) || strings.EqualFold(a.Email, usernameOrEmail) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *Store) UpdateLoginState(_ context.Context, accountID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return core.ErrNotFound
	}
	a.FailedAttempts = failedAttempts
	a.LockedUntil = lockedUntil
	if lastLogin != nil {
		a.LastLogin = lastLogin
	}
	return nil
}

func (s *Store) ListAccounts(_ context.Context, limit int) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ─── API keys ───

func (s *Store) CreateAPIKey(_ context.Context, k *core.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.apiKeys {
		if ex.KeyDigest == k.KeyDigest {
			return core.ErrConflict
		}
	}
	cp := *k
	s.apiKeys[k.ID] = &cp
	return nil
}

func (s *Store) GetAPIKeyByDigest(_ context.Context, digest string) (*core.APIKey, *core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.apiKeys {
		if k.KeyDigest == digest {
			a, ok := s.accounts[k.AccountID]
			if !ok {
				return nil, nil, core.ErrNotFound
			}
			kc, ac := *k, *a
			return &kc, &ac, nil
		}
	}
	return nil, nil, core.ErrNotFound
}

func (s *Store) GetAPIKeyByID(_ context.Context, id, accountID string) (*core.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.AccountID != accountID {
		return nil, core.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (s *Store) ListAPIKeys(_ context.Context, accountID string) ([]core.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.APIKey
	for _, k := range s.apiKeys {
		if k.AccountID == accountID {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeactivateAPIKey(_ context.Context, id, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.AccountID != accountID || !k.Active {
		return core.ErrNotFound
	}
	k.Active = false
	return nil
}

func (s *Store) TouchAPIKeyUsage(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok {
		return core.ErrNotFound
	}
	k.UsageCount++
	t := at
	k.LastUsedAt = &t
	return nil
}

// ─── Licenses ───

func (s *Store) CreateLicense(_ context.Context, l *core.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.licenses {
		if ex.KeyDigest == l.KeyDigest {
			return core.ErrConflict
		}
	}
	cp := *l
	s.licenses[l.ID] = &cp
	return nil
}

func (s *Store) GetLicenseByDigest(_ context.Context, digest string) (*core.License, *core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.licenses {
		if l.KeyDigest == digest {
			a, ok := s.accounts[l.AccountID]
			if !ok {
				return nil, nil, core.ErrNotFound
			}
			lc, ac := *l, *a
			return &lc, &ac, nil
		}
	}
	return nil, nil, core.ErrNotFound
}

func (s *Store) GetLicenseByID(_ context.Context, id, accountID string) (*core.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[id]
	if !ok || l.AccountID != accountID {
		return nil, core.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *Store) ListLicenses(_ context.Context, accountID string) ([]core.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.License
	for _, l := range s.licenses {
		if l.AccountID == accountID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeactivateLicense(_ context.Context, id, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[id]
	if !ok || l.AccountID != accountID || !l.Active {
		return core.ErrNotFound
	}
	l.Active = false
	return nil
}

// ─── Activations ───

func (s *Store) GetActivation(_ context.Context, licenseID, deviceID string) (*core.Activation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.activations {
		if a.LicenseID == licenseID && a.DeviceID == deviceID && a.Active {
			cp := *a
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

// ActivateDevice performs the capacity check and the insert under one lock,
// mirroring the transactional conditional update of the pg store.
func (s *Store) ActivateDevice(_ context.Context, a *core.Activation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.licenses[a.LicenseID]
	if !ok {
		return core.ErrNotFound
	}
	for _, ex := range s.activations {
		if ex.LicenseID == a.LicenseID && ex.DeviceID == a.DeviceID && ex.Active {
			return core.ErrConflict
		}
	}
	if l.CurrentActivations >= l.MaxActivations {
		return core.ErrCapacity
	}
	l.CurrentActivations++
	cp := *a
	cp.Active = true
	s.activations[a.ID] = &cp
	return nil
}

func (s *Store) TouchActivation(_ context.Context, id string, at time.Time, fp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activations[id]
	if !ok {
		return core.ErrNotFound
	}
	a.LastCheckAt = at
	if fp != "" {
		a.Fingerprint = fp
	}
	return nil
}

func (s *Store) ListActivations(_ context.Context, licenseID string) ([]core.Activation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Activation
	for _, a := range s.activations {
		if a.LicenseID == licenseID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) RevokeActivation(_ context.Context, id, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activations[id]
	if !ok || !a.Active {
		return core.ErrNotFound
	}
	l, ok := s.licenses[a.LicenseID]
	if !ok || l.AccountID != accountID {
		return core.ErrNotFound
	}
	a.Active = false
	if l.CurrentActivations > 0 {
		l.CurrentActivations--
	}
	return nil
}

// ─── Audit ───

func (s *Store) AppendFailedAttempt(_ context.Context, fa *core.FailedAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, *fa)
	return nil
}

func (s *Store) AppendSecurityEvent(_ context.Context, ev *core.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

func (s *Store) ListSecurityEvents(_ context.Context, limit int) ([]core.SecurityEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.SecurityEvent, len(s.events))
	copy(out, s.events)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateSession(_ context.Context, sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// FailedAttempts returns a snapshot of the append-only attempt log.
func (s *Store) FailedAttempts() []core.FailedAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FailedAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}
