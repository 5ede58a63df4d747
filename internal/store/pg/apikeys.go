package pg

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/jackc/pgx/v5"
)

const apiKeyCols = `id, account_id, key_digest, name, description, is_active, expires_at, ip_allow_list, usage_count, last_used_at, created_at`

func scanAPIKey(row pgx.Row) (*core.APIKey, error) {
	var k core.APIKey
	err := row.Scan(&k.ID, &k.AccountID, &k.KeyDigest, &k.Name, &k.Description,
		&k.Active, &k.ExpiresAt, &k.IPAllowList, &k.UsageCount, &k.LastUsedAt, &k.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Store) CreateAPIKey(ctx context.Context, k *core.APIKey) error {
	const q = `
		INSERT INTO api_keys (id, account_id, key_digest, name, description, is_active, expires_at, ip_allow_list, usage_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)`
	_, err := s.pool.Exec(ctx, q, k.ID, k.AccountID, k.KeyDigest, k.Name, k.Description,
		k.Active, k.ExpiresAt, k.IPAllowList, k.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

// GetAPIKeyByDigest busca por digest exacto y trae la cuenta dueña en el
// mismo round-trip (el validador necesita ambas).
func (s *Store) GetAPIKeyByDigest(ctx context.Context, digest string) (*core.APIKey, *core.Account, error) {
	const q = `
		SELECT k.id, k.account_id, k.key_digest, k.name, k.description, k.is_active,
		       k.expires_at, k.ip_allow_list, k.usage_count, k.last_used_at, k.created_at,
		       a.id, a.username, a.email, a.password_hash, a.is_active,
		       a.failed_attempts, a.locked_until, a.last_login, a.created_at
		FROM api_keys k
		JOIN accounts a ON a.id = k.account_id
		WHERE k.key_digest = $1`
	var k core.APIKey
	var a core.Account
	err := s.pool.QueryRow(ctx, q, digest).Scan(
		&k.ID, &k.AccountID, &k.KeyDigest, &k.Name, &k.Description, &k.Active,
		&k.ExpiresAt, &k.IPAllowList, &k.UsageCount, &k.LastUsedAt, &k.CreatedAt,
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Active,
		&a.FailedAttempts, &a.LockedUntil, &a.LastLogin, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, core.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &k, &a, nil
}

func (s *Store) GetAPIKeyByID(ctx context.Context, id, accountID string) (*core.APIKey, error) {
	const q = `SELECT ` + apiKeyCols + ` FROM api_keys WHERE id=$1 AND account_id=$2`
	return scanAPIKey(s.pool.QueryRow(ctx, q, id, accountID))
}

func (s *Store) ListAPIKeys(ctx context.Context, accountID string) ([]core.APIKey, error) {
	const q = `SELECT ` + apiKeyCols + ` FROM api_keys WHERE account_id=$1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

// DeactivateAPIKey is one-way: there is no reactivation path through the store.
func (s *Store) DeactivateAPIKey(ctx context.Context, id, accountID string) error {
	const q = `UPDATE api_keys SET is_active=FALSE WHERE id=$1 AND account_id=$2 AND is_active`
	ct, err := s.pool.Exec(ctx, q, id, accountID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) TouchAPIKeyUsage(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE api_keys SET usage_count=usage_count+1, last_used_at=$2 WHERE id=$1`
	_, err := s.pool.Exec(ctx, q, id, at)
	return err
}
