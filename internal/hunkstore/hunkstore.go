// Package hunkstore implements the Hunk Store from spec.md section 4.6: a
// vector of attributed hunks sorted by final_start_line, with the
// split/shift/search operations the History Walker and Buffer Overlay
// need. Grounded on libgit2's git_vector-based blame.c (kept in
// original_source/), translated to a Go slice with binary search, since
// Go has no direct equivalent of git_vector_bsearch2/insert_sorted.
package hunkstore

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cyraxred/blamewalk/internal/entrylist"
	"github.com/cyraxred/blamewalk/internal/mailmap"
)

// Hunk is a maximal contiguous range of final-file lines sharing the same
// attribution. A buffer-blame hunk (uncommitted lines) is identified by an
// all-zero FinalCommitID.
type Hunk struct {
	FinalStartLine uint32 // 1-based
	LinesInHunk    uint32
	OrigStartLine  uint32 // 1-based
	OrigPath       string
	FinalCommitID  plumbing.Hash
	OrigCommitID   plumbing.Hash
	Boundary       bool
	FinalSignature object.Signature
	OrigSignature  object.Signature
}

// IsBufferBlame reports whether h represents uncommitted lines.
func (h *Hunk) IsBufferBlame() bool {
	return h.FinalCommitID.IsZero()
}

// Store is the sorted vector of Hunks, ordered by FinalStartLine.
type Store struct {
	hunks []*Hunk
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Len returns the number of hunks.
func (s *Store) Len() int { return len(s.hunks) }

// At returns the hunk at index i, or nil if out of range.
func (s *Store) At(i int) *Hunk {
	if i < 0 || i >= len(s.hunks) {
		return nil
	}
	return s.hunks[i]
}

// All returns the hunks in final-line order. The caller must not mutate
// the returned slice.
func (s *Store) All() []*Hunk { return s.hunks }

// InsertSorted inserts h keeping the vector ordered by FinalStartLine.
func (s *Store) InsertSorted(h *Hunk) {
	i := sort.Search(len(s.hunks), func(i int) bool {
		return s.hunks[i].FinalStartLine > h.FinalStartLine
	})
	s.hunks = append(s.hunks, nil)
	copy(s.hunks[i+1:], s.hunks[i:])
	s.hunks[i] = h
}

// ByLine returns the index and hunk covering the given 1-based final line,
// or (-1, nil) if no hunk covers it.
func (s *Store) ByLine(line uint32) (int, *Hunk) {
	i := sort.Search(len(s.hunks), func(i int) bool {
		h := s.hunks[i]
		return h.FinalStartLine+h.LinesInHunk > line
	})
	if i < len(s.hunks) && s.hunks[i].FinalStartLine <= line {
		return i, s.hunks[i]
	}
	return -1, nil
}

// IndexOf returns the index of h in the vector, or -1 if absent. Uses
// pointer identity, matching libgit2's ptrs_equal_cmp.
func (s *Store) IndexOf(h *Hunk) int {
	for i, v := range s.hunks {
		if v == h {
			return i
		}
	}
	return -1
}

// RemoveAt deletes the hunk at index i.
func (s *Store) RemoveAt(i int) {
	s.hunks = append(s.hunks[:i], s.hunks[i+1:]...)
}

// Split splits the hunk at index i at the relative line rel
// (0 < rel < h.LinesInHunk): h keeps the first rel lines, a new successor
// hunk carrying the rest is inserted right after it. Returns the successor.
// A degenerate rel (<=0 or >= LinesInHunk) is a no-op returning h itself,
// matching libgit2's split_hunk_in_vector guard.
func (s *Store) Split(i int, rel uint32) *Hunk {
	h := s.hunks[i]
	if rel == 0 || rel >= h.LinesInHunk {
		return h
	}

	successor := &Hunk{
		FinalStartLine: h.FinalStartLine + rel,
		LinesInHunk:    h.LinesInHunk - rel,
		OrigStartLine:  h.OrigStartLine + rel,
		OrigPath:       h.OrigPath,
		FinalCommitID:  h.FinalCommitID,
		OrigCommitID:   h.OrigCommitID,
		Boundary:       h.Boundary,
		FinalSignature: h.FinalSignature,
		OrigSignature:  h.OrigSignature,
	}
	h.LinesInHunk = rel

	s.hunks = append(s.hunks, nil)
	copy(s.hunks[i+2:], s.hunks[i+1:])
	s.hunks[i+1] = successor
	return successor
}

// ShiftBy adds k (possibly negative) to FinalStartLine of every hunk whose
// FinalStartLine is >= startLine. The caller must ensure the result stays
// monotone.
func (s *Store) ShiftBy(startLine uint32, k int32) {
	i := sort.Search(len(s.hunks), func(i int) bool {
		return s.hunks[i].FinalStartLine >= startLine
	})
	for ; i < len(s.hunks); i++ {
		s.hunks[i].FinalStartLine = uint32(int64(s.hunks[i].FinalStartLine) + int64(k))
	}
}

// Clone deep-copies the store, used as the starting point for a Buffer
// Overlay derivation so the reference Blame's hunks are never mutated.
func (s *Store) Clone() *Store {
	clone := &Store{hunks: make([]*Hunk, len(s.hunks))}
	for i, h := range s.hunks {
		dup := *h
		clone.hunks[i] = &dup
	}
	return clone
}

// FromEntry converts a sealed Entry into a Hunk, per spec.md section 4.6.
// Both FinalSignature and OrigSignature come from the same suspect commit:
// a hunk is only ever sealed once, at the commit it was finalized on.
func FromEntry(e *entrylist.Entry, commit *object.Commit, mm *mailmap.Mailmap) *Hunk {
	sig := commit.Author
	if mm != nil {
		sig = mm.Resolve(sig)
	}
	return &Hunk{
		FinalStartLine: e.Lno + 1,
		LinesInHunk:    e.NumLines,
		OrigStartLine:  e.SLno + 1,
		OrigPath:       e.Suspect.Path,
		FinalCommitID:  e.Suspect.Commit,
		OrigCommitID:   e.Suspect.Commit,
		Boundary:       e.IsBoundary,
		FinalSignature: sig,
		OrigSignature:  sig,
	}
}
