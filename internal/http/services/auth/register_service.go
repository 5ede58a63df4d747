package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/keywarden/internal/jwt"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	"github.com/dropDatabas3/keywarden/internal/security/password"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// Errores de registro
var (
	ErrAccountExists = errors.New("account already exists")
	ErrInvalidEmail  = errors.New("invalid email")
)

// RegisterDeps contiene las dependencias del register service.
type RegisterDeps struct {
	Repo   core.Repository
	Issuer *jwtx.Issuer
	Hash   password.Params
}

type registerService struct {
	deps RegisterDeps
}

// NewRegisterService crea el servicio de alta de cuentas.
func NewRegisterService(deps RegisterDeps) RegisterService {
	if deps.Hash == (password.Params{}) {
		deps.Hash = password.Default
	}
	return &registerService{deps: deps}
}

func (s *registerService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.Username = strings.TrimSpace(strings.ToLower(in.Username))
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !strings.Contains(in.Email, "@") || strings.ContainsAny(in.Email, " \t") {
		return nil, ErrInvalidEmail
	}

	phc, err := password.Hash(s.deps.Hash, in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acc := &core.Account{
		ID:           tokens.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: phc,
		Active:       true,
		CreatedAt:    now,
	}
	if err := s.deps.Repo.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, core.ErrConflict) {
			log.Debug("username or email taken")
			return nil, ErrAccountExists
		}
		return nil, err
	}

	log.Info("account created", logger.AccountID(acc.ID))

	res := &dto.RegisterResult{AccountID: acc.ID}

	// Token de cortesía para no obligar a un login inmediato.
	if s.deps.Issuer != nil {
		if tok, exp, err := s.deps.Issuer.IssueAccess(acc.ID, map[string]any{"username": acc.Username}); err == nil {
			res.AccessToken = tok
			res.ExpiresIn = int64(exp.Sub(now).Seconds())
		} else {
			log.Warn("courtesy token not issued", logger.Err(err))
		}
	}
	return res, nil
}
