package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/docrepo-service/internal/core/cache"
	rediscache "github.com/unifiedui/docrepo-service/internal/infrastructure/cache/redis"
)

func setupMiniredis(t *testing.T, prefix string) (*miniredis.Miniredis, cache.Cache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	c, err := rediscache.NewCache(rediscache.Config{
		Host:       mr.Host(),
		Port:       mr.Port(),
		DefaultTTL: time.Minute,
		KeyPrefix:  prefix,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		mr.Close()
	})

	return mr, c
}

func TestNewCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	c, err := rediscache.NewCache(rediscache.Config{Host: host, Port: port})

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestCache_SetAndGet(t *testing.T) {
	mr, c := setupMiniredis(t, "docrepo")
	ctx := context.Background()

	err := c.Set(ctx, "notes:n1", []byte("payload"), 0)
	require.NoError(t, err)

	result, err := c.Get(ctx, "notes:n1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("payload"), result)

	// Prefix is applied on the wire and default TTL used when ttl is 0.
	assert.True(t, mr.Exists("docrepo:notes:n1"))
	assert.Equal(t, time.Minute, mr.TTL("docrepo:notes:n1"))
}

func TestCache_GetNotFound(t *testing.T) {
	_, c := setupMiniredis(t, "")

	result, err := c.Get(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCache_Delete(t *testing.T) {
	_, c := setupMiniredis(t, "docrepo")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "notes:n1", []byte("v"), time.Minute))

	deleted, err := c.Delete(ctx, "notes:n1")
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "notes:n1")
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestCache_DeletePattern(t *testing.T) {
	mr, c := setupMiniredis(t, "docrepo")
	ctx := context.Background()

	c.Set(ctx, "tenantA-notes:1", []byte("a1"), time.Minute)
	c.Set(ctx, "tenantA-notes:2", []byte("a2"), time.Minute)
	c.Set(ctx, "tenantB-notes:1", []byte("b1"), time.Minute)

	deleted, err := c.DeletePattern(ctx, "tenantA-notes:*")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	keys := mr.Keys()
	assert.Contains(t, keys, "docrepo:tenantB-notes:1")
	assert.NotContains(t, keys, "docrepo:tenantA-notes:1")
	assert.NotContains(t, keys, "docrepo:tenantA-notes:2")
}

func TestCache_TTLExpiration(t *testing.T) {
	mr, c := setupMiniredis(t, "")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "expiring", []byte("v"), time.Second))

	mr.FastForward(2 * time.Second)

	result, err := c.Get(ctx, "expiring")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCache_Ping(t *testing.T) {
	_, c := setupMiniredis(t, "")

	assert.NoError(t, c.Ping(context.Background()))
}

func TestCache_Incr(t *testing.T) {
	mr, c := setupMiniredis(t, "docrepo")
	ctx := context.Background()

	first, err := c.Incr(ctx, "counter")
	require.NoError(t, err)
	second, err := c.Incr(ctx, "counter")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	value, err := mr.Get("docrepo:counter")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestCache_DeletePatternLiteralPrefix(t *testing.T) {
	mr, c := setupMiniredis(t, "doc[1]")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "notes:1", []byte("v"), time.Minute))
	require.NoError(t, mr.Set("doc1:notes:1", "other"))

	deleted, err := c.DeletePattern(ctx, "notes:*")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, []string{"doc1:notes:1"}, mr.Keys())
}

func TestCache_DeletePatternEscapedCollection(t *testing.T) {
	mr, c := setupMiniredis(t, "")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, `t[1]*?\-notes:1`, []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "t1-notes:1", []byte("b"), time.Minute))

	deleted, err := c.DeletePattern(ctx, cache.EscapePattern(`t[1]*?\-notes`)+":*")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, []string{"t1-notes:1"}, mr.Keys())
}
