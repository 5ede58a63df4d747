package pg

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/jackc/pgx/v5"
)

const activationCols = `id, license_id, device_id, fingerprint, origin_ip, is_active, last_check_at, created_at`

func scanActivation(row pgx.Row) (*core.Activation, error) {
	var a core.Activation
	err := row.Scan(&a.ID, &a.LicenseID, &a.DeviceID, &a.Fingerprint, &a.OriginIP,
		&a.Active, &a.LastCheckAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetActivation(ctx context.Context, licenseID, deviceID string) (*core.Activation, error) {
	const q = `SELECT ` + activationCols + ` FROM activations WHERE license_id=$1 AND device_id=$2 AND is_active`
	return scanActivation(s.pool.QueryRow(ctx, q, licenseID, deviceID))
}

// ActivateDevice consumes one capacity slot. The conditional UPDATE is the
// serializing step: two racing first-time activations both reach it, but the
// row lock orders them and the WHERE clause lets only slots-remaining
// through. Everything runs in one transaction so a cancelled call leaves no
// partial increment.
func (s *Store) ActivateDevice(ctx context.Context, a *core.Activation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const incr = `
		UPDATE licenses
		SET current_activations = current_activations + 1
		WHERE id = $1 AND current_activations < max_activations`
	ct, err := tx.Exec(ctx, incr, a.LicenseID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return core.ErrCapacity
	}

	const ins = `
		INSERT INTO activations (id, license_id, device_id, fingerprint, origin_ip, is_active, last_check_at, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)`
	if _, err := tx.Exec(ctx, ins, a.ID, a.LicenseID, a.DeviceID, a.Fingerprint,
		a.OriginIP, a.LastCheckAt, a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			// Otro check-in del mismo device ganó la carrera; el rollback
			// devuelve el slot.
			return core.ErrConflict
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) TouchActivation(ctx context.Context, id string, at time.Time, fp string) error {
	const q = `
		UPDATE activations
		SET last_check_at = $2,
		    fingerprint = CASE WHEN $3 <> '' THEN $3 ELSE fingerprint END
		WHERE id = $1`
	_, err := s.pool.Exec(ctx, q, id, at, fp)
	return err
}

func (s *Store) ListActivations(ctx context.Context, licenseID string) ([]core.Activation, error) {
	const q = `SELECT ` + activationCols + ` FROM activations WHERE license_id=$1 ORDER BY created_at`
	rows, err := s.pool.Query(ctx, q, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Activation
	for rows.Next() {
		a, err := scanActivation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// RevokeActivation flips is_active and decrements the counter in one
// transaction. The `AND a.is_active` guard makes a concurrent double revoke
// a no-op for the loser: zero rows updated, counter untouched.
func (s *Store) RevokeActivation(ctx context.Context, id, accountID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const deact = `
		UPDATE activations a
		SET is_active = FALSE
		FROM licenses l
		WHERE a.id = $1 AND a.license_id = l.id AND l.account_id = $2 AND a.is_active
		RETURNING a.license_id`
	var licenseID string
	err = tx.QueryRow(ctx, deact, id, accountID).Scan(&licenseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return err
	}

	const decr = `
		UPDATE licenses
		SET current_activations = current_activations - 1
		WHERE id = $1 AND current_activations > 0`
	if _, err := tx.Exec(ctx, decr, licenseID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
