// Package ratelimit provides keyed token-bucket limiters shared by the
// outbound HTTP clients.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTimeout is how long an unused default limiter is kept.
const DefaultIdleTimeout = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	pinned   bool
}

// Map holds one rate.Limiter per key. Limiters for unknown keys are created
// on first use with the default limit and dropped again once they have been
// idle for longer than the idle timeout. Keys configured with Set are kept.
type Map struct {
	mu        sync.Mutex
	limiters  map[string]*entry
	fallback  rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// New creates a Map whose limiters allow perSecond requests per key.
// A non-positive perSecond disables limiting.
func New(perSecond float64) *Map {
	return &Map{
		limiters: make(map[string]*entry),
		fallback: toLimit(perSecond),
		burst:    1,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
}

// SetIdleTimeout changes how long unused default limiters are kept.
func (m *Map) SetIdleTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = d
}

// Set overrides the limit for a single key. The key is never evicted.
func (m *Map) Set(key string, perSecond float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[key] = &entry{
		limiter:  rate.NewLimiter(toLimit(perSecond), m.burst),
		lastSeen: m.now(),
		pinned:   true,
	}
}

// Wait blocks until the limiter for key allows a request, or the context is
// canceled.
func (m *Map) Wait(ctx context.Context, key string) error {
	return m.get(key).Wait(ctx)
}

// Len returns the number of keys with a limiter.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

func (m *Map) get(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > m.idle {
		m.evict(now)
		m.lastSweep = now
	}

	e, ok := m.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(m.fallback, m.burst)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// evict drops default limiters idle for longer than the idle timeout.
// Callers must hold m.mu.
func (m *Map) evict(now time.Time) {
	for key, e := range m.limiters {
		if !e.pinned && now.Sub(e.lastSeen) > m.idle {
			delete(m.limiters, key)
		}
	}
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}
