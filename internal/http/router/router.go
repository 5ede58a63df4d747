// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
	"github.com/dropDatabas3/keywarden/internal/http/handlers"
	mw "github.com/dropDatabas3/keywarden/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/keywarden/internal/jwt"
	"github.com/dropDatabas3/keywarden/internal/rate"
)

// Deps contiene todo lo que el router necesita para montar la API.
type Deps struct {
	Auth     *handlers.AuthHandler
	Keys     *handlers.KeysHandler
	Licenses *handlers.LicensesHandler
	Validate *handlers.ValidateHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler

	Issuer   *jwtx.Issuer
	AdminKey string

	// Limiters opcionales; nil desactiva el límite de ese grupo.
	LoginLimiter    rate.Limiter
	ValidateLimiter rate.Limiter
}

// New construye el router con la cadena de middlewares base.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	// Salud y métricas, sin auth ni rate limit.
	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Auth pública (registro y login), con su propio límite.
	r.Group(func(r chi.Router) {
		if deps.LoginLimiter != nil {
			r.Use(mw.WithRateLimit(deps.LoginLimiter, mw.IPPathRateKey))
		}
		deps.Auth.Register(r)
	})

	// API pública de validación de credenciales.
	r.Group(func(r chi.Router) {
		if deps.ValidateLimiter != nil {
			r.Use(mw.WithRateLimit(deps.ValidateLimiter, mw.IPPathRateKey))
		}
		deps.Validate.Register(r)
	})

	// Gestión owner-scoped: requiere sesión.
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(deps.Issuer))
		deps.Keys.Register(r)
		deps.Licenses.Register(r)
		deps.Validate.RegisterRevoke(r)
	})

	// Superficie admin detrás de X-Admin-API-Key.
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAdminKey(deps.AdminKey))
		deps.Admin.Register(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apperr.WriteError(w, apperr.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apperr.WriteError(w, apperr.ErrMethodNotAllowed)
	})

	return r
}
