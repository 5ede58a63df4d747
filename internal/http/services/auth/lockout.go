package auth

import (
	"context"
	"math/rand"
	"time"

	"github.com/dropDatabas3/keywarden/internal/audit"
	"github.com/dropDatabas3/keywarden/internal/email"
	"github.com/dropDatabas3/keywarden/internal/metrics"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// LockoutGuard cuenta fallos de autenticación por cuenta y bloquea tras
// superar el umbral. El contador es acumulativo desde el último login
// exitoso; el bloqueo expira solo, pero el contador recién se limpia con
// una autenticación exitosa.
type LockoutGuard struct {
	Repo  core.Repository
	Audit *audit.Recorder

	// Mailer avisa al dueño cuando la cuenta se bloquea. Opcional,
	// best-effort.
	Mailer email.Notifier

	MaxAttempts  int
	LockDuration time.Duration

	// Cada camino de fallo duerme un intervalo aleatorio dentro de
	// [DelayMin, DelayMax], incluido el de cuenta inexistente, para que el
	// tiempo de respuesta no revele si el login existe.
	DelayMin time.Duration
	DelayMax time.Duration

	// Sleep y Now son inyectables para tests.
	Sleep func(time.Duration)
	Now   func() time.Time
}

// NewLockoutGuard arma un guard con los colaboradores reales.
func NewLockoutGuard(repo core.Repository, rec *audit.Recorder, mailer email.Notifier, maxAttempts int, lockDuration, delayMin, delayMax time.Duration) *LockoutGuard {
	return &LockoutGuard{
		Repo:         repo,
		Audit:        rec,
		Mailer:       mailer,
		MaxAttempts:  maxAttempts,
		LockDuration: lockDuration,
		DelayMin:     delayMin,
		DelayMax:     delayMax,
		Sleep:        time.Sleep,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// IsLocked responde si la cuenta está bloqueada en este instante.
func (g *LockoutGuard) IsLocked(a *core.Account) bool {
	if a == nil || a.LockedUntil == nil {
		return false
	}
	return g.Now().Before(*a.LockedUntil)
}

// Fail registra un intento fallido. acc puede ser nil (login inexistente):
// igual se persiste el FailedAttempt y se aplica el delay, pero no hay
// contador que incrementar. Devuelve true cuando este fallo disparó el
// bloqueo de la cuenta.
func (g *LockoutGuard) Fail(ctx context.Context, acc *core.Account, login, originIP string) (bool, error) {
	defer g.delay()

	metrics.LoginFailuresTotal.Inc()

	now := g.Now()
	fa := &core.FailedAttempt{
		ID:        tokens.NewID(),
		Username:  login,
		OriginIP:  originIP,
		CreatedAt: now,
	}
	if acc != nil {
		fa.AccountID = acc.ID
	}
	if err := g.Repo.AppendFailedAttempt(ctx, fa); err != nil {
		logger.From(ctx).Warn("failed attempt not persisted", logger.Err(err))
	}

	if acc == nil {
		return false, nil
	}
	if g.IsLocked(acc) {
		// Ya bloqueada; no se acumula más mientras dure el bloqueo.
		return false, nil
	}

	attempts := acc.FailedAttempts + 1
	var lockedUntil *time.Time
	if attempts >= g.MaxAttempts {
		until := now.Add(g.LockDuration)
		lockedUntil = &until
	}

	if err := g.Repo.UpdateLoginState(ctx, acc.ID, attempts, lockedUntil, nil); err != nil {
		return false, err
	}
	acc.FailedAttempts = attempts
	acc.LockedUntil = lockedUntil

	if lockedUntil == nil {
		return false, nil
	}

	metrics.LockoutsTotal.Inc()
	if g.Audit != nil {
		g.Audit.Event(ctx, acc.ID, audit.ActionAccountLocked, "too many failed logins", originIP)
	}
	if g.Mailer != nil && acc.Email != "" {
		if err := g.Mailer.LockoutNotice(acc.Email, acc.Username, *lockedUntil, attempts); err != nil {
			logger.From(ctx).Warn("lockout notice not sent", logger.Err(err), logger.AccountID(acc.ID))
		}
	}
	return true, nil
}

// Succeed limpia contador y bloqueo expirado, y marca el último login.
func (g *LockoutGuard) Succeed(ctx context.Context, acc *core.Account) error {
	now := g.Now()
	if err := g.Repo.UpdateLoginState(ctx, acc.ID, 0, nil, &now); err != nil {
		return err
	}
	acc.FailedAttempts = 0
	acc.LockedUntil = nil
	acc.LastLogin = &now
	return nil
}

func (g *LockoutGuard) delay() {
	if g.Sleep == nil || g.DelayMax <= 0 {
		return
	}
	d := g.DelayMin
	if span := g.DelayMax - g.DelayMin; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	g.Sleep(d)
}
