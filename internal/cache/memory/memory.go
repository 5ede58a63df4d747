// Package memory adapta go-cache al contrato cache.Cache. Es el backend
// por defecto del cache negativo de validación cuando no hay Redis.
package memory

import (
	"time"

	"github.com/dropDatabas3/keywarden/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

type Mem struct{ c *gocache.Cache }

// New crea el cache con defaultTTL para los Set sin TTL explícito. El
// janitor barre a la mitad del TTL para que un miss recordado no sobreviva
// mucho más que su ventana.
func New(defaultTTL time.Duration) cache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	sweep := defaultTTL / 2
	if sweep < 30*time.Second {
		sweep = 30 * time.Second
	}
	return &Mem{c: gocache.New(defaultTTL, sweep)}
}

func (m *Mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Set(k string, v []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(k, v, ttl)
}

func (m *Mem) Delete(k string) { m.c.Delete(k) }
