package passblame

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/entrylist"
	"github.com/cyraxred/blamewalk/internal/linediff"
	"github.com/cyraxred/blamewalk/internal/objectstore"
	"github.com/cyraxred/blamewalk/internal/origin"
	"github.com/cyraxred/blamewalk/internal/renamedetect"
	"github.com/cyraxred/blamewalk/internal/testrepo"
)

func TestCarveNoHunksIsSingleUnchangedSegment(t *testing.T) {
	segs := carve(0, 5, nil)
	require.Len(t, segs, 1)
	assert.Equal(t, segment{sLno: 0, numLines: 5, added: false}, segs[0])
}

func TestCarveSplitsAroundAddition(t *testing.T) {
	hunks := []linediff.Hunk{{OldStart: 2, OldLines: 0, NewStart: 2, NewLines: 1}}
	segs := carve(0, 5, hunks)
	require.Len(t, segs, 3)
	assert.Equal(t, segment{sLno: 0, numLines: 2, added: false}, segs[0])
	assert.Equal(t, segment{sLno: 2, numLines: 1, added: true}, segs[1])
	assert.Equal(t, segment{sLno: 3, numLines: 2, added: false}, segs[2])
}

func TestCarveAdditionCoversEntireRange(t *testing.T) {
	hunks := []linediff.Hunk{{OldStart: 0, OldLines: 0, NewStart: 0, NewLines: 10}}
	segs := carve(2, 5, hunks)
	require.Len(t, segs, 1)
	assert.Equal(t, segment{sLno: 2, numLines: 3, added: true}, segs[0])
}

func TestMapToParentBeforeAnyHunk(t *testing.T) {
	hunks := []linediff.Hunk{{OldStart: 10, OldLines: 1, NewStart: 12, NewLines: 1}}
	assert.Equal(t, uint32(3), mapToParent(hunks, 5))
}

func TestMapToParentAfterAllHunks(t *testing.T) {
	hunks := []linediff.Hunk{{OldStart: 0, OldLines: 1, NewStart: 0, NewLines: 2}}
	// new has one extra line inserted at the top; a line at new-index 5
	// maps back to old-index 4.
	assert.Equal(t, uint32(4), mapToParent(hunks, 5))
}

func TestSplitAgainstParentReassignsUnchangedPortion(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\nb\nc\n")

	store := objectstore.New(b.Repo)
	cache := origin.NewCache(store)
	parentOrigin, err := cache.Get(c1, "f")
	require.NoError(t, err)

	hunks := []linediff.Hunk{{OldStart: 1, OldLines: 1, NewStart: 1, NewLines: 1}}
	e := &entrylist.Entry{SLno: 0, Lno: 0, NumLines: 3}

	stillChild, reassigned := splitAgainstParent(e, hunks, parentOrigin)
	require.Len(t, stillChild, 1)
	require.Len(t, reassigned, 2)
	assert.Equal(t, uint32(1), stillChild[0].SLno)
	assert.Equal(t, uint32(1), stillChild[0].NumLines)
	assert.Equal(t, uint32(0), reassigned[0].SLno)
	assert.Equal(t, uint32(2), reassigned[1].SLno)
}

func TestEngineRunSealsAtOldestCommit(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\n")

	commit, err := b.Repo.CommitObject(c1)
	require.NoError(t, err)

	store := objectstore.New(b.Repo)
	cache := origin.NewCache(store)
	o, err := cache.Get(c1, "f")
	require.NoError(t, err)

	e := &entrylist.Entry{Suspect: o, SLno: 0, Lno: 0, NumLines: 1}
	engine := &Engine{Origins: cache, Renames: renamedetect.New()}

	result, err := engine.Run(commit, o, []*entrylist.Entry{e}, c1)
	require.NoError(t, err)
	assert.Len(t, result.Sealed, 1)
	assert.True(t, result.Sealed[0].IsBoundary)
}

func TestEngineRunSealsAtRootCommit(t *testing.T) {
	b := testrepo.New()
	c1 := b.WriteCommit("v1", "f", "a\n")

	commit, err := b.Repo.CommitObject(c1)
	require.NoError(t, err)

	store := objectstore.New(b.Repo)
	cache := origin.NewCache(store)
	o, err := cache.Get(c1, "f")
	require.NoError(t, err)

	e := &entrylist.Entry{Suspect: o, SLno: 0, Lno: 0, NumLines: 1}
	engine := &Engine{Origins: cache, Renames: renamedetect.New()}

	result, err := engine.Run(commit, o, []*entrylist.Entry{e}, plumbing.ZeroHash)
	require.NoError(t, err)
	assert.Len(t, result.Sealed, 1)
	assert.True(t, result.Sealed[0].IsBoundary)
}

func TestEngineRunTieBreakPrefersFirstParent(t *testing.T) {
	b := testrepo.New()
	base := b.WriteCommit("base", "f", "x\n")
	pA := b.WriteCommit("pA", "f", "a\nb\n")
	b.Checkout(base)
	pB := b.WriteCommit("pB", "f", "a\nb\n")
	b.Checkout(pA)
	b.Write("f", "a\nb\n")
	merge := b.Commit("merge", pB)

	commit, err := b.Repo.CommitObject(merge)
	require.NoError(t, err)
	require.Equal(t, 2, commit.NumParents())

	store := objectstore.New(b.Repo)
	cache := origin.NewCache(store)
	o, err := cache.Get(merge, "f")
	require.NoError(t, err)
	pAOrigin, err := cache.Get(pA, "f")
	require.NoError(t, err)

	e := &entrylist.Entry{Suspect: o, SLno: 0, Lno: 0, NumLines: 2}
	engine := &Engine{Origins: cache, Renames: renamedetect.New()}

	result, err := engine.Run(commit, o, []*entrylist.Entry{e}, plumbing.ZeroHash)
	require.NoError(t, err)

	// Both parents carry identical content, so either could explain these
	// lines; the first parent wins and the second is never even tried.
	require.Len(t, result.Reassigned, 1)
	assert.Same(t, pAOrigin, result.Reassigned[0].Suspect)
	assert.Empty(t, result.Sealed)
}

func TestEngineRunFirstParentFlagSkipsSecondParent(t *testing.T) {
	b := testrepo.New()
	base := b.WriteCommit("base", "f", "x\n")
	pA := b.WriteCommit("pA", "f", "zzz\n")
	b.Checkout(base)
	pB := b.WriteCommit("pB", "f", "a\nb\n")
	b.Checkout(pA)
	b.Write("f", "a\nb\n")
	merge := b.Commit("merge", pB)

	commit, err := b.Repo.CommitObject(merge)
	require.NoError(t, err)
	require.Equal(t, 2, commit.NumParents())

	store := objectstore.New(b.Repo)
	cache := origin.NewCache(store)
	o, err := cache.Get(merge, "f")
	require.NoError(t, err)

	e := &entrylist.Entry{Suspect: o, SLno: 0, Lno: 0, NumLines: 2}
	engine := &Engine{Origins: cache, Renames: renamedetect.New(), Flags: core.FirstParent}

	result, err := engine.Run(commit, o, []*entrylist.Entry{e}, plumbing.ZeroHash)
	require.NoError(t, err)

	// pA's content shares nothing with the merge, so without the flag the
	// walk would fall through to pB (identical content, fully explains the
	// entry). With FIRST_PARENT it must seal at the merge commit instead
	// of ever reassigning to pB.
	assert.Empty(t, result.Reassigned)
	require.Len(t, result.Sealed, 1)
	assert.Same(t, o, result.Sealed[0].Suspect)
	assert.False(t, result.Sealed[0].IsBoundary)
}
