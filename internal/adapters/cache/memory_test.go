package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evently/internal/domain"
)

func TestMemoryPageCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryPageCache()
	c.now = func() time.Time { return now }

	home := domain.PageCacheKey("/", "page=1", "anon")
	event := domain.PageCacheKey("/events/ev-1", "", "user-1")
	eventOther := domain.PageCacheKey("/events/ev-10", "", "user-1")
	require.NoError(t, c.Set(ctx, home, []byte("home"), time.Minute))
	require.NoError(t, c.Set(ctx, event, []byte("event"), time.Minute))
	require.NoError(t, c.Set(ctx, eventOther, []byte("other"), 0))

	body, ok, err := c.Get(ctx, home)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("home"), body)

	require.NoError(t, c.Invalidate(ctx, "/events/ev-1"))
	_, ok, _ = c.Get(ctx, event)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, eventOther)
	assert.True(t, ok, "sibling path with the same prefix survives")
	_, ok, _ = c.Get(ctx, home)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, home)
	assert.False(t, ok, "expired")
	_, ok, _ = c.Get(ctx, eventOther)
	assert.True(t, ok, "no ttl never expires")
}

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	g := NewMemoryGuard()
	g.now = func() time.Time { return now }

	t1, ok, err := g.Acquire(ctx, "submit:f1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, t1)

	_, ok, _ = g.Acquire(ctx, "submit:f1", time.Minute)
	assert.False(t, ok)
	t2, ok, _ := g.Acquire(ctx, "submit:f2", time.Minute)
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "submit:f1", t1))
	_, ok, _ = g.Acquire(ctx, "submit:f1", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	t3, ok, _ := g.Acquire(ctx, "submit:f2", time.Minute)
	assert.True(t, ok, "expired hold is taken over")
	assert.NotEqual(t, t2, t3)

	require.NoError(t, g.Release(ctx, "submit:f2", t2))
	_, ok, _ = g.Acquire(ctx, "submit:f2", time.Minute)
	assert.False(t, ok, "late release of the expired hold keeps the new one")

	require.NoError(t, g.Release(ctx, "submit:f2", t3))
	_, ok, _ = g.Acquire(ctx, "submit:f2", time.Minute)
	assert.True(t, ok)
}
