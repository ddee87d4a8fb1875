package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "rillc-cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheMissesBeforeAnyStore(t *testing.T) {
	c := openTestCache(t)
	_, hit, err := c.Lookup(context.Background(), Key{Source: "let x = 1", Convention: "conv-a"})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheHitsAfterStore(t *testing.T) {
	c := openTestCache(t)
	key := Key{Source: "let x = 1", Convention: "conv-a"}
	_, err := c.Store(context.Background(), key, "    ldi r1, 0x001\n    ret 0x0\n")
	require.NoError(t, err)

	assembly, hit, err := c.Lookup(context.Background(), key)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "    ldi r1, 0x001\n    ret 0x0\n", assembly)
}

func TestCacheDistinguishesByConvention(t *testing.T) {
	c := openTestCache(t)
	src := "let x = 1"
	_, err := c.Store(context.Background(), Key{Source: src, Convention: "conv-a"}, "asm-a")
	require.NoError(t, err)

	_, hit, err := c.Lookup(context.Background(), Key{Source: src, Convention: "conv-b"})
	require.NoError(t, err)
	assert.False(t, hit, "changing the convention must not serve assembly compiled under a different one")
}

func TestCacheStoreOverwritesExistingEntry(t *testing.T) {
	c := openTestCache(t)
	key := Key{Source: "let x = 1", Convention: "conv-a"}
	_, err := c.Store(context.Background(), key, "first")
	require.NoError(t, err)
	_, err = c.Store(context.Background(), key, "second")
	require.NoError(t, err)

	assembly, hit, err := c.Lookup(context.Background(), key)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "second", assembly)
}

func TestCacheStoreReturnsDistinctSessionIDsPerCall(t *testing.T) {
	c := openTestCache(t)
	key := Key{Source: "let x = 1", Convention: "conv-a"}
	id1, err := c.Store(context.Background(), key, "first")
	require.NoError(t, err)
	id2, err := c.Store(context.Background(), key, "second")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}
