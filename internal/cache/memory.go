package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Minute

// Memory implementa Client sobre patrickmn/go-cache.
type Memory struct {
	prefix string
	c      *gocache.Cache
}

// NewMemory crea un cache en memoria. Las entradas expiradas se purgan cada minuto.
func NewMemory(prefix string) *Memory {
	return &Memory{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, memoryCleanupInterval),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(prefixed(m.prefix, key))
	return ok, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}

// Len devuelve la cantidad de items (incluye expirados aún no purgados).
func (m *Memory) Len() int { return m.c.ItemCount() }
