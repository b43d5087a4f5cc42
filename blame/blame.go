// Package blame is the public API of the blame engine: it wires the Line
// Index, Origin cache, Entry worklist, Pass-Blame Engine, History Walker,
// Hunk Store, and Buffer Overlay together behind the two entry points
// spec.md section 6.1 describes, blame_file and blame_buffer.
package blame

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/entrylist"
	"github.com/cyraxred/blamewalk/internal/historywalk"
	"github.com/cyraxred/blamewalk/internal/hunkstore"
	"github.com/cyraxred/blamewalk/internal/linediff"
	"github.com/cyraxred/blamewalk/internal/lineindex"
	"github.com/cyraxred/blamewalk/internal/mailmap"
	"github.com/cyraxred/blamewalk/internal/objectstore"
	"github.com/cyraxred/blamewalk/internal/origin"
	"github.com/cyraxred/blamewalk/internal/overlay"
	"github.com/cyraxred/blamewalk/internal/passblame"
	"github.com/cyraxred/blamewalk/internal/renamedetect"
)

// Options is the public alias of the options bag blame_file/blame_buffer
// accept, re-exported so callers outside this module don't need to import
// the internal/core package directly.
type Options = core.Options

// Flag is the public alias of the option bit set.
type Flag = core.Flag

const (
	UseMailmap                  = core.UseMailmap
	TrackCopiesSameFile         = core.TrackCopiesSameFile
	TrackCopiesSameCommitMoves  = core.TrackCopiesSameCommitMoves
	TrackCopiesSameCommitCopies = core.TrackCopiesSameCommitCopies
	TrackCopiesAnyCommitCopies  = core.TrackCopiesAnyCommitCopies
	FirstParent                 = core.FirstParent
	IgnoreWhitespace            = core.IgnoreWhitespace
)

// OptionsInit zero-initializes Options with the documented defaults.
func OptionsInit() Options { return core.OptionsInit(0) }

// Blame is the result of a blame computation: a completed Hunk Store plus
// the context needed to derive a buffer overlay from it.
type Blame struct {
	repo      *git.Repository
	options   core.Options
	path      string
	pathsSeen map[string]bool

	finalCommit *object.Commit
	finalBlob   []byte
	finalBuf    []byte

	lineIndex *lineindex.Index
	mailmap   *mailmap.Mailmap
	hunks     *hunkstore.Store
}

// headAdapter lets core.NormalizeOptions resolve HEAD without importing go-git.
type headAdapter struct{ repo *git.Repository }

func (h headAdapter) ResolveHEAD() (plumbing.Hash, error) {
	ref, err := h.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}

// BlameFile computes line attribution for path as of options.NewestCommit
// (HEAD if zero), per spec.md section 6.1.
func BlameFile(repo *git.Repository, path string, opts Options) (*Blame, error) {
	normalized, err := core.NormalizeOptions(opts, headAdapter{repo})
	if err != nil {
		return nil, err
	}

	store := objectstore.New(repo)
	origins := origin.NewCache(store)

	finalCommit, err := repo.CommitObject(normalized.NewestCommit)
	if err != nil {
		return nil, core.Wrap(core.ObjectError, err)
	}

	finalOrigin, err := origins.Get(normalized.NewestCommit, path)
	if err != nil {
		return nil, err
	}

	idx := lineindex.Build(finalOrigin.Blob)
	minLine, maxLine, err := idx.Window(normalized.MinLine, normalized.MaxLine)
	if err != nil {
		return nil, err
	}

	var mm *mailmap.Mailmap
	if normalized.Flags.Has(core.UseMailmap) {
		mm = loadMailmap(repo)
	} else {
		mm = mailmap.Empty()
	}

	seed := &entrylist.Entry{
		Suspect:  origin.Retain(finalOrigin),
		SLno:     minLine - 1,
		Lno:      minLine - 1,
		NumLines: maxLine - minLine + 1,
	}

	engine := &passblame.Engine{
		Origins:     origins,
		Renames:     renamedetect.New(),
		DiffOptions: linediff.Options{IgnoreWhitespace: normalized.Flags.Has(core.IgnoreWhitespace)},
		Flags:       normalized.Flags,
	}

	walker := historywalk.New(repo, origins, engine, mm, normalized.OldestCommit)
	if err := walker.Seed(seed); err != nil {
		return nil, err
	}

	hunks, err := walker.Run()
	if err != nil {
		return nil, err
	}

	b := &Blame{
		repo:        repo,
		options:     normalized,
		path:        path,
		pathsSeen:   map[string]bool{path: true},
		finalCommit: finalCommit,
		finalBlob:   finalOrigin.Blob,
		lineIndex:   idx,
		mailmap:     mm,
		hunks:       hunks,
	}
	for _, h := range hunks.All() {
		b.pathsSeen[h.OrigPath] = true
	}
	return b, nil
}

// BlameBuffer layers an uncommitted buffer onto reference's finished
// Hunk Store, per spec.md section 6.1/4.7. reference is never mutated.
func BlameBuffer(reference *Blame, buf []byte) (*Blame, error) {
	if len(buf) == 0 {
		return nil, core.Newf(core.Invalid, "buffer_blame: buffer must be non-empty")
	}

	derived := overlay.Apply(reference.hunks, reference.path, string(reference.finalBlob), string(buf), linediff.Options{})

	out := &Blame{
		repo:        reference.repo,
		options:     reference.options,
		path:        reference.path,
		pathsSeen:   reference.pathsSeen,
		finalCommit: reference.finalCommit,
		finalBlob:   reference.finalBlob,
		finalBuf:    buf,
		lineIndex:   reference.lineIndex,
		mailmap:     reference.mailmap,
		hunks:       derived,
	}
	return out, nil
}

// HunkCount returns the number of hunks in the blame result.
func (b *Blame) HunkCount() uint32 { return uint32(b.hunks.Len()) }

// HunkByIndex returns the hunk at the given 0-based index, or nil if out of range.
func (b *Blame) HunkByIndex(i int) *hunkstore.Hunk { return b.hunks.At(i) }

// HunkByLine returns the hunk covering the given 1-based final line, or nil.
func (b *Blame) HunkByLine(line uint32) *hunkstore.Hunk {
	_, h := b.hunks.ByLine(line)
	return h
}

// Free releases resources owned by the Blame. A no-op under Go's garbage
// collector; kept for API symmetry with spec.md section 6.1. Idempotent
// and safe on a nil receiver.
func (b *Blame) Free() {}

func loadMailmap(repo *git.Repository) *mailmap.Mailmap {
	wt, err := repo.Worktree()
	if err != nil {
		return mailmap.Empty()
	}
	f, err := wt.Filesystem.Open(".mailmap")
	if err != nil {
		return mailmap.Empty()
	}
	defer f.Close()

	mm, err := mailmap.Load(f)
	if err != nil {
		return mailmap.Empty()
	}
	return mm
}
