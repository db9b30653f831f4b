// Package cache implements the rendered page cache and the submission guard,
// in process memory or in redis.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"evently/internal/domain"
)

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryPageCache is a process-local domain.PageCache.
type MemoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.body, true, nil
}

func (c *MemoryPageCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	e := memoryEntry{body: append([]byte(nil), body...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryPageCache) Invalidate(ctx context.Context, path string) error {
	prefix := domain.PageCachePrefix(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

type guardHold struct {
	token string
	until time.Time
}

// MemoryGuard is a process-local domain.SubmissionGuard.
type MemoryGuard struct {
	mu       sync.Mutex
	held     map[string]guardHold
	now      func() time.Time
	newToken func() string
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]guardHold), now: time.Now, newToken: uuid.NewString}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if h, ok := g.held[key]; ok && now.Before(h.until) {
		return "", false, nil
	}
	token := g.newToken()
	g.held[key] = guardHold{token: token, until: now.Add(ttl)}
	return token, true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.held[key]; ok && h.token == token {
		delete(g.held, key)
	}
	return nil
}
