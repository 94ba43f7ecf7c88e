package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates requests per caller key. Implementations are injected
// at server start so the in-memory window can be swapped for the Redis
// one without touching call sites.
type Limiter interface {
	Allow(key string) bool
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewFixedWindow returns a process-local fixed-window limiter: limit
// requests per key per window, counter reset at window boundaries.
func NewFixedWindow(limit int, window time.Duration) Limiter {
	return &fixedWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

func (l *fixedWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &windowEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if e.count >= l.limit {
		return false
	}
	e.count++
	return true
}
