package pg

import (
	"context"

	"github.com/dropDatabas3/keywarden/internal/store/core"
)

func (s *Store) AppendFailedAttempt(ctx context.Context, fa *core.FailedAttempt) error {
	const q = `
		INSERT INTO failed_login_attempts (id, account_id, username, origin_ip, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)`
	_, err := s.pool.Exec(ctx, q, fa.ID, fa.AccountID, fa.Username, fa.OriginIP, fa.CreatedAt)
	return err
}

func (s *Store) AppendSecurityEvent(ctx context.Context, ev *core.SecurityEvent) error {
	const q = `
		INSERT INTO security_events (id, account_id, action, detail, origin_ip, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, q, ev.ID, ev.AccountID, ev.Action, ev.Detail, ev.OriginIP, ev.CreatedAt)
	return err
}

func (s *Store) ListSecurityEvents(ctx context.Context, limit int) ([]core.SecurityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
		SELECT id, COALESCE(account_id, ''), action, detail, origin_ip, created_at
		FROM security_events ORDER BY created_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.SecurityEvent
	for rows.Next() {
		var ev core.SecurityEvent
		if err := rows.Scan(&ev.ID, &ev.AccountID, &ev.Action, &ev.Detail, &ev.OriginIP, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, sess *core.Session) error {
	const q = `
		INSERT INTO sessions (id, account_id, token_hash, origin_ip, user_agent, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.pool.Exec(ctx, q, sess.ID, sess.AccountID, sess.TokenHash,
		sess.OriginIP, sess.UserAgent, sess.Active, sess.ExpiresAt, sess.CreatedAt)
	return err
}
