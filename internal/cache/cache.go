// Package cache define un cache de bytes con TTL. Hay dos backends:
// memoria de proceso (go-cache) y Redis compartido entre réplicas.
package cache

import "time"

// Cache es un KV efímero. Get devuelve (nil, false) ante miss o backend
// caído; los llamadores tratan el cache como best-effort.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
