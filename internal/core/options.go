package core

import "github.com/go-git/go-git/v5/plumbing"

// Flag is a bitset of blame behavior toggles. The four copy-tracking flags
// form an implication chain: enabling a stronger one upgrades the weaker
// ones too (see NormalizeOptions).
type Flag uint32

const (
	// UseMailmap rewrites author/committer signatures through .mailmap.
	UseMailmap Flag = 1 << iota
	// TrackCopiesSameFile follows a file across renames on its own history.
	TrackCopiesSameFile
	// TrackCopiesSameCommitMoves additionally considers same-commit moves.
	TrackCopiesSameCommitMoves
	// TrackCopiesSameCommitCopies additionally considers same-commit copies.
	TrackCopiesSameCommitCopies
	// TrackCopiesAnyCommitCopies additionally considers copies from any blob
	// reachable in the parent commit.
	TrackCopiesAnyCommitCopies
	// FirstParent stops pass-blame after the first parent of a merge commit.
	FirstParent
	// IgnoreWhitespace ignores leading/trailing whitespace differences when diffing.
	IgnoreWhitespace
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// Options controls how BlameFile walks history. Zero value is valid input
// to NormalizeOptions, which fills in the documented defaults.
type Options struct {
	// NewestCommit is where the walk starts. Zero hash resolves to HEAD.
	NewestCommit plumbing.Hash
	// OldestCommit optionally bounds how far back history is crossed.
	OldestCommit plumbing.Hash
	// MinLine/MaxLine select a 1-based inclusive line window. 0 means "unset".
	MinLine, MaxLine uint32
	Flags            Flag
}

// OptionsInit zero-initializes Options with the documented defaults. The
// version argument exists for API-compatibility symmetry with the original
// git_blame_options_init and is presently unused (there is only one
// version of this struct).
func OptionsInit(_ uint32) Options {
	return Options{MinLine: 1}
}

// headResolver resolves the repository's HEAD commit. Implemented by the
// blame package's headAdapter, which wraps a *git.Repository.
type headResolver interface {
	ResolveHEAD() (plumbing.Hash, error)
}

// NormalizeOptions applies the fixups documented in spec.md section 3/4.2:
// HEAD resolution, min_line defaulting, and the copy-tracking flag
// implication closure. max_line is left at 0 (meaning "unset") because the
// file length isn't known until the Line Index runs.
func NormalizeOptions(opts Options, repo headResolver) (Options, error) {
	out := opts

	if out.NewestCommit.IsZero() {
		h, err := repo.ResolveHEAD()
		if err != nil {
			return out, Wrap(NotFound, err)
		}
		out.NewestCommit = h
	}

	if out.MinLine == 0 {
		out.MinLine = 1
	}

	if out.Flags.Has(TrackCopiesAnyCommitCopies) {
		out.Flags |= TrackCopiesSameCommitCopies
	}
	if out.Flags.Has(TrackCopiesSameCommitCopies) {
		out.Flags |= TrackCopiesSameCommitMoves
	}
	if out.Flags.Has(TrackCopiesSameCommitMoves) {
		out.Flags |= TrackCopiesSameFile
	}

	if out.MaxLine != 0 && out.MinLine > out.MaxLine {
		return out, Newf(Invalid, "min_line %d exceeds max_line %d", out.MinLine, out.MaxLine)
	}

	return out, nil
}
