package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryClient(t *testing.T, maxSize int) (*MemoryClient, *time.Time) {
	t.Helper()
	c := NewMemoryClient(maxSize)
	t.Cleanup(func() { _ = c.Close() })

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryClient_SetGet(t *testing.T) {
	c, _ := newTestMemoryClient(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Expiry(t *testing.T) {
	c, now := newTestMemoryClient(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("2"), 0))

	*now = now.Add(2 * time.Minute)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	c.sweep()
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClient_EvictsSoonestExpiry(t *testing.T) {
	c, _ := newTestMemoryClient(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("b"), time.Hour))
	require.NoError(t, c.Set(ctx, "c", []byte("c"), time.Hour))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryClient_OverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestMemoryClient(t, 2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "a", []byte("2"), time.Minute))

	got, err := c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestMemoryClient_Delete(t *testing.T) {
	c, _ := newTestMemoryClient(t, 10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc", SessionKey("abc"))
	assert.Equal(t, "a:b:c", CacheKey("a", "b", "c"))
}
