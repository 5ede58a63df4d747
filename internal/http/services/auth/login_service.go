package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/keywarden/internal/jwt"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	"github.com/dropDatabas3/keywarden/internal/security/password"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// LoginDeps contiene las dependencias para el login service.
type LoginDeps struct {
	Repo   core.Repository
	Issuer *jwtx.Issuer
	Guard  *LockoutGuard
}

type loginService struct {
	deps LoginDeps
}

// NewLoginService crea un nuevo servicio de login.
func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{deps: deps}
}

// Errores de login
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTokenIssueFailed   = errors.New("failed to issue token")
)

func (s *loginService) LoginPassword(ctx context.Context, in dto.LoginRequest, originIP, userAgent string) (*dto.LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("LoginPassword"),
	)

	in.Login = strings.TrimSpace(strings.ToLower(in.Login))
	if in.Login == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	guard := s.deps.Guard

	acc, err := s.deps.Repo.GetAccountByLogin(ctx, in.Login)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			log.Debug("account not found")
			// Registrar el intento igual; el delay uniforme evita que el
			// cliente distinga cuenta inexistente de password incorrecto.
			_, _ = guard.Fail(ctx, nil, in.Login, originIP)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	log = log.With(logger.AccountID(acc.ID))

	// Bloqueada: rechazar antes de comparar el password.
	if guard.IsLocked(acc) {
		log.Warn("login rejected, account locked")
		_, _ = guard.Fail(ctx, acc, in.Login, originIP)
		return nil, ErrAccountLocked
	}

	if !acc.Active {
		log.Debug("account disabled")
		_, _ = guard.Fail(ctx, acc, in.Login, originIP)
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(in.Password, acc.PasswordHash) {
		locked, ferr := guard.Fail(ctx, acc, in.Login, originIP)
		if ferr != nil {
			log.Warn("lockout state not persisted", logger.Err(ferr))
		}
		if locked {
			log.Warn("account locked after repeated failures",
				logger.Count(acc.FailedAttempts),
			)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if err := guard.Succeed(ctx, acc); err != nil {
		log.Warn("login counters not reset", logger.Err(err))
	}

	tok, exp, err := s.deps.Issuer.IssueAccess(acc.ID, map[string]any{
		"username": acc.Username,
	})
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	now := guard.Now()
	sess := &core.Session{
		ID:        tokens.NewID(),
		AccountID: acc.ID,
		TokenHash: tokens.SHA256Base64URL(tok),
		OriginIP:  originIP,
		UserAgent: userAgent,
		Active:    true,
		ExpiresAt: exp,
		CreatedAt: now,
	}
	if err := s.deps.Repo.CreateSession(ctx, sess); err != nil {
		// La sesión es trazabilidad, no control de acceso; el token ya es válido.
		log.Warn("session row not persisted", logger.Err(err))
	}

	log.Info("login ok")
	return &dto.LoginResult{
		AccountID:   acc.ID,
		AccessToken: tok,
		ExpiresIn:   int64(exp.Sub(now).Seconds()),
	}, nil
}

// RecordLoginOutcome alimenta el contador de lockout desde flujos externos.
func (s *loginService) RecordLoginOutcome(ctx context.Context, accountID string, success bool, originIP string) (bool, error) {
	guard := s.deps.Guard

	if accountID == "" {
		if !success {
			_, _ = guard.Fail(ctx, nil, "", originIP)
		}
		return false, nil
	}

	acc, err := s.deps.Repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if success {
		return false, guard.Succeed(ctx, acc)
	}
	if guard.IsLocked(acc) {
		_, _ = guard.Fail(ctx, acc, acc.Username, originIP)
		return true, nil
	}
	return guard.Fail(ctx, acc, acc.Username, originIP)
}
