package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process fixed-window fallback used when no redis
// is configured. Same window semantics as RedisLimiter, single node only.
type MemoryLimiter struct {
	policy Policy

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	hits  int64
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  p,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	start := now.Truncate(l.policy.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || w.start.Before(start) {
		w = &window{start: start}
		l.windows[key] = w
	}
	w.hits++

	// opportunistic cleanup of stale windows
	if len(l.windows) > 4096 {
		for k, ww := range l.windows {
			if ww.start.Before(start) {
				delete(l.windows, k)
			}
		}
	}

	remaining := l.policy.Limit - w.hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     w.hits <= l.policy.Limit,
		Remaining:   remaining,
		CurrentHits: w.hits,
		WindowTTL:   l.policy.Window - now.Sub(start),
	}
	if !res.Allowed {
		res.RetryAfter = res.WindowTTL
	}
	return res, nil
}
