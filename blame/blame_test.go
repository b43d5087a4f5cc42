package blame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/testrepo"
)

func TestBlameFileSingleCommitAttributesWholeFile(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\nb\nc\n")

	bl, err := BlameFile(b.Repo, "f", OptionsInit())
	require.NoError(t, err)

	require.Equal(t, uint32(1), bl.HunkCount())
	h := bl.HunkByIndex(0)
	assert.Equal(t, uint32(1), h.FinalStartLine)
	assert.Equal(t, uint32(3), h.LinesInHunk)
	assert.Equal(t, c1, h.FinalCommitID)
	assert.True(t, h.Boundary)
}

func TestBlameFileLineModificationSplitsHunks(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\nb\nc\n")
	c2 := b.WriteCommit("v2", "f", "a\nB\nc\n")

	bl, err := BlameFile(b.Repo, "f", OptionsInit())
	require.NoError(t, err)

	require.Equal(t, uint32(3), bl.HunkCount())
	assert.Equal(t, c1, bl.HunkByLine(1).FinalCommitID)
	assert.Equal(t, c2, bl.HunkByLine(2).FinalCommitID)
	assert.Equal(t, c1, bl.HunkByLine(3).FinalCommitID)
}

func TestBlameFileRenameWithoutTrackCopiesSealsAtRename(t *testing.T) {
	b := testrepo.New()
	b.WriteCommit("add old", "old.go", "a\nb\n")
	b.Remove("old.go")
	b.Write("new.go", "a\nb\n")
	c2 := b.Commit("rename")

	bl, err := BlameFile(b.Repo, "new.go", OptionsInit())
	require.NoError(t, err)

	require.Equal(t, uint32(1), bl.HunkCount())
	h := bl.HunkByIndex(0)
	assert.Equal(t, c2, h.FinalCommitID)
	assert.True(t, h.Boundary)
}

func TestBlameFileRenameWithTrackCopiesFollowsThrough(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("add old", "old.go", "a\nb\n")
	b.Remove("old.go")
	b.Write("new.go", "a\nb\n")
	b.Commit("rename")

	opts := OptionsInit()
	opts.Flags |= TrackCopiesSameFile

	bl, err := BlameFile(b.Repo, "new.go", opts)
	require.NoError(t, err)

	require.Equal(t, uint32(1), bl.HunkCount())
	h := bl.HunkByIndex(0)
	assert.Equal(t, c1, h.FinalCommitID)
	assert.Equal(t, "old.go", h.OrigPath)
}

func TestBlameBufferAdditionLayersUncommittedHunk(t *testing.T) {
	b := testrepo.New()
	b.WriteCommit("v1", "f", "a\nb\nc\n")

	reference, err := BlameFile(b.Repo, "f", OptionsInit())
	require.NoError(t, err)

	derived, err := BlameBuffer(reference, []byte("a\nb\nc\nd\n"))
	require.NoError(t, err)

	require.Equal(t, uint32(2), derived.HunkCount())
	buf := derived.HunkByLine(4)
	require.NotNil(t, buf)
	assert.True(t, buf.IsBufferBlame())

	assert.Equal(t, uint32(1), reference.HunkCount())
}

func TestBlameBufferDeletionShrinksCommittedHunk(t *testing.T) {
	b := testrepo.New()
	b.WriteCommit("v1", "f", "a\nb\nc\n")

	reference, err := BlameFile(b.Repo, "f", OptionsInit())
	require.NoError(t, err)

	derived, err := BlameBuffer(reference, []byte("a\nc\n"))
	require.NoError(t, err)

	require.Equal(t, uint32(1), derived.HunkCount())
	assert.Equal(t, uint32(2), derived.HunkByIndex(0).LinesInHunk)
}

func TestBlameFileMinMaxLineWindow(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\nb\nc\nd\ne\n")

	opts := OptionsInit()
	opts.MinLine = 2
	opts.MaxLine = 4

	bl, err := BlameFile(b.Repo, "f", opts)
	require.NoError(t, err)

	require.Equal(t, uint32(1), bl.HunkCount())
	h := bl.HunkByIndex(0)
	assert.Equal(t, uint32(2), h.FinalStartLine)
	assert.Equal(t, uint32(3), h.LinesInHunk)
	assert.Equal(t, c1, h.FinalCommitID)
}

func TestBlameBufferRejectsEmptyBuffer(t *testing.T) {
	b := testrepo.New()
	b.WriteCommit("v1", "f", "a\n")

	reference, err := BlameFile(b.Repo, "f", OptionsInit())
	require.NoError(t, err)

	_, err = BlameBuffer(reference, nil)
	assert.True(t, core.Is(err, core.Invalid))
}
