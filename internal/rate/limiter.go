// Package rate protege los dos endpoints públicos de Keywarden: login y
// validación de credenciales. Ventana fija por clave derivada (IP + path).
// El backend Redis comparte el presupuesto entre réplicas; el de memoria
// es por proceso y sirve para dev y tests.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Policy describe el presupuesto de un endpoint. Name separa el namespace
// de claves ("login", "validate") para que un atacante martillando validate
// no consuma el presupuesto de login de su IP.
type Policy struct {
	Name   string
	Limit  int64
	Window time.Duration
}

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter es el colaborador de admisión delante de la API pública. El motor
// de validación en sí nunca limita.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter cuenta hits con INCR sobre una clave por ventana.
type RedisLimiter struct {
	client *rdb.Client
	policy Policy
}

func NewRedisLimiter(client *rdb.Client, p Policy) *RedisLimiter {
	return &RedisLimiter{client: client, policy: p}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	win := now.Truncate(l.policy.Window)
	k := fmt.Sprintf("rl:%s:%s:%d", l.policy.Name, strings.ReplaceAll(key, " ", "_"), win.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// NX: solo el primer hit de la ventana fija el vencimiento.
	pipe.ExpireNX(ctx, k, l.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	hits := incr.Val()
	remaining := l.policy.Limit - hits
	if remaining < 0 {
		remaining = 0
	}

	// El TTL sale del mismo reloj truncado que armó la clave; no hace
	// falta otro round-trip a Redis para leerlo.
	res := Result{
		Allowed:     hits <= l.policy.Limit,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   l.policy.Window - now.Sub(win),
	}
	if !res.Allowed {
		res.RetryAfter = res.WindowTTL
	}
	return res, nil
}
