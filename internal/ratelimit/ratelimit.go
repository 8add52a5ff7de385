// Package ratelimit provides a keyed fixed-window request counter. State is
// process-lifetime only: a restart resets all windows, which is acceptable
// for webhook ingress protection.
package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count int
	reset time.Time
}

// Limiter counts requests per key over a fixed window with an atomic
// check-and-increment under a mutex. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow reports whether another request for key fits in the current window,
// incrementing the counter when it does.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.reset) {
		l.entries[key] = &entry{count: 1, reset: now.Add(l.window)}
		return true
	}

	if e.count >= l.limit {
		return false
	}
	e.count++
	return true
}
