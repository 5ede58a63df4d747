package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/keywarden/internal/http/errors"
)

// RequireAdminKey valida el header X-Admin-API-Key contra la clave
// configurada. Si la clave no está configurada, la superficie admin
// queda deshabilitada y toda request recibe 403.
func RequireAdminKey(adminKey string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin surface disabled"))
				return
			}
			got := strings.TrimSpace(r.Header.Get("X-Admin-API-Key"))
			if got == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("admin key required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) != 1 {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
