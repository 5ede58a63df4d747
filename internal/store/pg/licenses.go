package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/jackc/pgx/v5"
)

const licenseCols = `id, account_id, product_id, key_digest, is_active, expires_at, max_activations, current_activations, created_at`

func scanLicense(row pgx.Row) (*core.License, error) {
	var l core.License
	err := row.Scan(&l.ID, &l.AccountID, &l.ProductID, &l.KeyDigest, &l.Active,
		&l.ExpiresAt, &l.MaxActivations, &l.CurrentActivations, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) CreateLicense(ctx context.Context, l *core.License) error {
	const q = `
		INSERT INTO licenses (id, account_id, product_id, key_digest, is_active, expires_at, max_activations, current_activations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)`
	_, err := s.pool.Exec(ctx, q, l.ID, l.AccountID, l.ProductID, l.KeyDigest,
		l.Active, l.ExpiresAt, l.MaxActivations, l.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) GetLicenseByDigest(ctx context.Context, digest string) (*core.License, *core.Account, error) {
	const q = `
		SELECT l.id, l.account_id, l.product_id, l.key_digest, l.is_active,
		       l.expires_at, l.max_activations, l.current_activations, l.created_at,
		       a.id, a.username, a.email, a.password_hash, a.is_active,
		       a.failed_attempts, a.locked_until, a.last_login, a.created_at
		FROM licenses l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.key_digest = $1`
	var l core.License
	var a core.Account
	err := s.pool.QueryRow(ctx, q, digest).Scan(
		&l.ID, &l.AccountID, &l.ProductID, &l.KeyDigest, &l.Active,
		&l.ExpiresAt, &l.MaxActivations, &l.CurrentActivations, &l.CreatedAt,
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Active,
		&a.FailedAttempts, &a.LockedUntil, &a.LastLogin, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, core.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &l, &a, nil
}

func (s *Store) GetLicenseByID(ctx context.Context, id, accountID string) (*core.License, error) {
	const q = `SELECT ` + licenseCols + ` FROM licenses WHERE id=$1 AND account_id=$2`
	return scanLicense(s.pool.QueryRow(ctx, q, id, accountID))
}

func (s *Store) ListLicenses(ctx context.Context, accountID string) ([]core.License, error) {
	const q = `SELECT ` + licenseCols + ` FROM licenses WHERE account_id=$1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) DeactivateLicense(ctx context.Context, id, accountID string) error {
	const q = `UPDATE licenses SET is_active=FALSE WHERE id=$1 AND account_id=$2 AND is_active`
	ct, err := s.pool.Exec(ctx, q, id, accountID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
