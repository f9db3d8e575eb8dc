package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante in-process de RedisLimiter, con las mismas
// ventanas alineadas a Window.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu  sync.Mutex
	c   *gocache.Cache
	now func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		c:      gocache.New(window, 2*window),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := sanitizeKey(key) + ":" + winStart.Format(time.RFC3339Nano)
	ttl := winStart.Add(l.Window).Sub(now)

	l.mu.Lock()
	var hits int64
	if err := l.c.Add(k, int64(1), l.Window); err == nil {
		hits = 1
	} else {
		n, _ := l.c.IncrementInt64(k, 1)
		hits = n
	}
	l.mu.Unlock()

	return decide(hits, l.Max, ttl), nil
}
