// Package middlewares contiene los decoradores HTTP de Keywarden: request
// id, logging, recover, auth por JWT, clave admin y rate limiting. El
// router los compone con chi.
package middlewares

import "net/http"

// Middleware decora un http.Handler. Compatible con chi (r.Use).
type Middleware func(http.Handler) http.Handler
