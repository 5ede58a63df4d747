package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/keywarden/internal/http/dto/auth"
	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/http/middlewares"
	authsvc "github.com/dropDatabas3/keywarden/internal/http/services/auth"
)

type AuthHandler struct {
	register authsvc.RegisterService
	login    authsvc.LoginService
}

func NewAuthHandler(register authsvc.RegisterService, login authsvc.LoginService) *AuthHandler {
	return &AuthHandler{register: register, login: login}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/v1/auth/register", h.handleRegister)
	r.Post("/v1/auth/login", h.handleLogin)
}

// POST /v1/auth/register
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in dto.RegisterRequest
	if !readStrictJSON(w, r, &in) {
		return
	}

	res, err := h.register.Register(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrMissingFields):
			apperr.WriteError(w, apperr.ErrMissingFields)
		case errors.Is(err, authsvc.ErrInvalidEmail):
			apperr.WriteError(w, apperr.ErrBadRequest.WithDetail("invalid email"))
		case errors.Is(err, authsvc.ErrAccountExists):
			apperr.WriteError(w, apperr.ErrAlreadyExists)
		default:
			apperr.WriteError(w, err)
		}
		return
	}

	out := dto.RegisterResponse{
		AccountID:   res.AccountID,
		AccessToken: res.AccessToken,
		ExpiresIn:   res.ExpiresIn,
	}
	if out.AccessToken != "" {
		out.TokenType = "Bearer"
	}
	writeJSON(w, http.StatusCreated, out)
}

// POST /v1/auth/login
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in dto.LoginRequest
	if !readStrictJSON(w, r, &in) {
		return
	}

	res, err := h.login.LoginPassword(r.Context(), in, middlewares.ClientIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrMissingFields):
			apperr.WriteError(w, apperr.ErrMissingFields)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			apperr.WriteError(w, apperr.ErrInvalidCredential)
		case errors.Is(err, authsvc.ErrAccountLocked):
			apperr.WriteError(w, apperr.ErrAccountLocked)
		default:
			apperr.WriteError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		AccountID:   res.AccountID,
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   res.ExpiresIn,
	})
}
