package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/testrepo"
)

func TestLoadReadsBlobContent(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "a\nb\nc\n")

	s := New(b.Repo)
	content, err := s.Load(c1, "f")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(content))
}

func TestLoadMissingPathIsNotFound(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "a\n")

	s := New(b.Repo)
	_, err := s.Load(c1, "nope")
	assert.True(t, core.Is(err, core.NotFound))
}

func TestLoadMemoizesByBlobHash(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add f", "f", "same content\n")
	b.Write("g", "same content\n")
	c2 := b.Commit("add g")

	s := New(b.Repo)
	a, err := s.Load(c1, "f")
	require.NoError(t, err)
	c, err := s.Load(c2, "g")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(c))
	assert.Len(t, s.byBlob, 1)
}
