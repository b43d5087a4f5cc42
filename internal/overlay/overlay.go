// Package overlay implements the Buffer Overlay from spec.md section 4.7:
// applying a buffer-vs-final-blob diff to a finished Hunk Store to produce
// a derived store with inserted uncommitted ("buffer-blame") hunks.
// Grounded directly on libgit2's git_blame_buffer/buffer_hunk_cb/
// buffer_line_cb in original_source/src/blame.c - the shift-on-deletion
// arithmetic in particular is lifted from there line for line, since
// spec.md section 9 flags it as subtle enough to warrant that.
package overlay

import (
	"github.com/cyraxred/blamewalk/internal/hunkstore"
	"github.com/cyraxred/blamewalk/internal/linediff"
)

// Apply clones reference and replays a context_lines=0 diff between
// oldText (the reference's final blob) and newText (the buffer), mutating
// the clone in place. reference is never modified.
func Apply(reference *hunkstore.Store, path string, oldText, newText string, opts linediff.Options) *hunkstore.Store {
	store := reference.Clone()
	hunks := linediff.Diff(oldText, newText, opts)

	a := &applier{store: store, path: path}
	for _, h := range hunks {
		a.applyHunk(h)
	}
	return store
}

type applier struct {
	store   *hunkstore.Store
	path    string
	current *hunkstore.Hunk
}

// wedgeLine picks the 1-based line at which this diff hunk's changes
// begin: the new-side start for a pure insertion (nothing deleted to
// anchor on), otherwise the old-side start. The old-side start is counted
// in the reference blob's lines; it is not adjusted for lines added or
// removed by earlier diff hunks.
func wedgeLine(h linediff.Hunk) uint32 {
	if h.OldLines == 0 {
		return h.NewStart + 1
	}
	return h.OldStart + 1
}

func startsAtOrAfter(h *hunkstore.Hunk, line uint32) bool { return line <= h.FinalStartLine }
func endsAtOrBefore(h *hunkstore.Hunk, line uint32) bool {
	return line >= h.FinalStartLine+h.LinesInHunk-1
}

// applyHunk processes one diff hunk: buffer_hunk_cb locates or creates the
// wedge point, then buffer_line_cb replays each line's effect in order.
func (a *applier) applyHunk(h linediff.Hunk) {
	wedge := wedgeLine(h)
	currentDiffLine := wedge

	idx, cur := a.store.ByLine(wedge)
	switch {
	case cur == nil:
		// Line added at the end of the file.
		cur = &hunkstore.Hunk{FinalStartLine: wedge, LinesInHunk: 0, OrigStartLine: wedge, OrigPath: a.path}
		a.store.InsertSorted(cur)
	case !startsAtOrAfter(cur, wedge):
		cur = a.store.Split(idx, wedge-cur.FinalStartLine)
	}
	a.current = cur

	for _, line := range h.Lines {
		switch line.Origin {
		case linediff.Addition:
			cur = a.current
			if cur != nil && cur.IsBufferBlame() && endsAtOrBefore(cur, currentDiffLine) {
				cur.LinesInHunk++
				a.store.ShiftBy(currentDiffLine+1, 1)
			} else {
				a.store.ShiftBy(currentDiffLine, 1)
				nh := &hunkstore.Hunk{FinalStartLine: currentDiffLine, LinesInHunk: 1, OrigPath: a.path}
				a.store.InsertSorted(nh)
				a.current = nh
			}
			currentDiffLine++

		case linediff.Deletion:
			cur = a.current
			shiftBase := currentDiffLine + cur.LinesInHunk + 1
			cur.LinesInHunk--
			if cur.LinesInHunk == 0 {
				shiftBase--
				if i := a.store.IndexOf(cur); i >= 0 {
					a.store.RemoveAt(i)
					a.current = a.store.At(i)
				}
			}
			a.store.ShiftBy(shiftBase, -1)
		}
	}
}
