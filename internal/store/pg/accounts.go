package pg

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/jackc/pgx/v5"
)

const accountCols = `id, username, email, password_hash, is_active, failed_attempts, locked_until, last_login, created_at`

func scanAccount(row pgx.Row) (*core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Active,
		&a.FailedAttempts, &a.LockedUntil, &a.LastLogin, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *core.Account) error {
	const q = `
		INSERT INTO accounts (id, username, email, password_hash, is_active, failed_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)`
	_, err := s.pool.Exec(ctx, q, a.ID, a.Username, a.Email, a.PasswordHash, a.Active, a.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrConflict
	}
	return err
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE id=$1`
	return scanAccount(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetAccountByLogin(ctx context.Context, usernameOrEmail string) (*core.Account, error) {
	const q = `SELECT ` + accountCols + ` FROM accounts WHERE username=$1 OR email=$1`
	return scanAccount(s.pool.QueryRow(ctx, q, usernameOrEmail))
}

func (s *Store) UpdateLoginState(ctx context.Context, accountID string, failedAttempts int, lockedUntil *time.Time, lastLogin *time.Time) error {
	const q = `
		UPDATE accounts
		SET failed_attempts=$2,
		    locked_until=$3,
		    last_login=COALESCE($4, last_login)
		WHERE id=$1`
	ct, err := s.pool.Exec(ctx, q, accountID, failedAttempts, lockedUntil, lastLogin)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, limit int) ([]core.Account, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `SELECT ` + accountCols + ` FROM accounts ORDER BY created_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
