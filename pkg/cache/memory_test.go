package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "promo:usage:AMIN20", 7, time.Minute))
	require.NoError(t, c.Set(ctx, "forever", "x", 0))

	var got int
	found, err := c.Get(ctx, "promo:usage:AMIN20", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, got)

	now = now.Add(2 * time.Minute)
	found, err = c.Get(ctx, "promo:usage:AMIN20", &got)
	require.NoError(t, err)
	assert.False(t, found)

	var s string
	found, err = c.Get(ctx, "forever", &s)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMemoryCache_DeleteAndCopySemantics(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	src := map[string]int{"a": 1}
	require.NoError(t, c.Set(ctx, "k", src, 0))
	src["a"] = 99

	var got map[string]int
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, got["a"])

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
