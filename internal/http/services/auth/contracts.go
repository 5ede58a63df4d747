// Package auth contiene contracts para los servicios de autenticación.
package auth

import (
	"context"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/auth"
)

// RegisterService define el alta de cuentas.
type RegisterService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResult, error)
}

// LoginService define las operaciones de login.
type LoginService interface {
	// LoginPassword autentica una cuenta con username/email y password.
	LoginPassword(ctx context.Context, in dto.LoginRequest, originIP, userAgent string) (*dto.LoginResult, error)

	// RecordLoginOutcome permite a flujos de login externos alimentar el
	// contador de lockout. accountID vacío registra el intento sin cuenta.
	RecordLoginOutcome(ctx context.Context, accountID string, success bool, originIP string) (locked bool, err error)
}
