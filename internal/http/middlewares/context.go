package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxAccountIDKey ctxKey = "account_id"
)

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithAccountID guarda el ID de la cuenta autenticada en el contexto.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxAccountIDKey, accountID)
}

// GetAccountID obtiene el ID de la cuenta autenticada, o "" si no hay.
func GetAccountID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxAccountIDKey).(string); ok {
		return v
	}
	return ""
}

// ClientIP resuelve la IP real del cliente, respetando X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
