package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyraxred/blamewalk/internal/objectstore"
	"github.com/cyraxred/blamewalk/internal/testrepo"
)

func TestGetInternsByCommitAndPath(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "a\nb\n")

	cache := NewCache(objectstore.New(b.Repo))
	o1, err := cache.Get(c1, "f")
	require.NoError(t, err)
	o2, err := cache.Get(c1, "f")
	require.NoError(t, err)

	assert.Same(t, o1, o2)
	assert.Equal(t, "a\nb\n", string(o1.Blob))
}

func TestGetDistinctPathsAreDistinctOrigins(t *testing.T) {
	b := testrepo.New()
	b.Write("f", "a\n")
	b.Write("g", "b\n")
	c1 := b.Commit("add f and g")

	cache := NewCache(objectstore.New(b.Repo))
	of, err := cache.Get(c1, "f")
	require.NoError(t, err)
	og, err := cache.Get(c1, "g")
	require.NoError(t, err)

	assert.NotSame(t, of, og)
}

func TestReleaseDropsFromCacheAtZeroRefcount(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "a\n")

	cache := NewCache(objectstore.New(b.Repo))
	o1, err := cache.Get(c1, "f")
	require.NoError(t, err)

	cache.Release(o1)
	assert.Empty(t, cache.byKey)

	o2, err := cache.Get(c1, "f")
	require.NoError(t, err)
	assert.NotSame(t, o1, o2)
}

func TestRetainKeepsOriginAliveAcrossOneRelease(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "a\n")

	cache := NewCache(objectstore.New(b.Repo))
	o1, err := cache.Get(c1, "f")
	require.NoError(t, err)
	Retain(o1)

	cache.Release(o1)
	assert.NotEmpty(t, cache.byKey)

	cache.Release(o1)
	assert.Empty(t, cache.byKey)
}

func TestReleaseNilIsNoop(t *testing.T) {
	cache := NewCache(nil)
	assert.NotPanics(t, func() { cache.Release(nil) })
}
