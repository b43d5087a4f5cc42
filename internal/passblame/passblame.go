// Package passblame implements the Pass-Blame Engine, spec.md section 4.4 -
// the hard part of the blame engine. Given an Entry resident at a child
// commit, it diffs the child's blob against each candidate parent's blob
// and rewrites the Entry into resolved sub-ranges (kept at the child) and
// forwarded sub-ranges (re-suspected on the parent).
package passblame

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/entrylist"
	"github.com/cyraxred/blamewalk/internal/linediff"
	"github.com/cyraxred/blamewalk/internal/origin"
	"github.com/cyraxred/blamewalk/internal/renamedetect"
)

// Engine runs one commit's worth of pass-blame for every Entry currently
// suspecting that commit's Origin.
type Engine struct {
	Origins     *origin.Cache
	Renames     *renamedetect.Detector
	DiffOptions linediff.Options
	Flags       core.Flag
}

// Result is the outcome of running pass-blame for one batch of entries
// sharing a suspect Origin.
type Result struct {
	// Reassigned holds entries newly re-suspected on a parent Origin, to be
	// spliced into the global worklist by the History Walker.
	Reassigned []*entrylist.Entry
	// Sealed holds entries that could not be moved to any parent: they are
	// finalized at their current suspect and ready to become Hunks.
	Sealed []*entrylist.Entry
}

// Run processes entries (all of which must suspect childOrigin, resident
// at commit child) against child's parents in order, honoring
// core.FirstParent. oldestCommit, if non-zero, stops the walk exactly at
// that commit (by identity, not generation - see SPEC_FULL.md section 4).
func (e *Engine) Run(child *object.Commit, childOrigin *origin.Origin, entries []*entrylist.Entry, oldestCommit plumbing.Hash) (Result, error) {
	if !oldestCommit.IsZero() && child.Hash == oldestCommit {
		for _, ent := range entries {
			ent.IsBoundary = true
		}
		return Result{Sealed: entries}, nil
	}

	numParents := child.NumParents()
	if e.Flags.Has(core.FirstParent) && numParents > 1 {
		numParents = 1
	}

	remaining := entries
	var reassigned []*entrylist.Entry
	resolvedAnyParent := false

	for i := 0; i < numParents && len(remaining) > 0; i++ {
		parent, err := child.Parent(i)
		if err != nil {
			// Shallow clone or grafted history: not a fatal error, per
			// spec.md section 7. This parent simply contributes nothing,
			// i.e. its Origin is absent (spec.md section 4.4 step 2).
			continue
		}

		path, found, err := e.resolveParentPath(parent, childOrigin.Path, childOrigin.Blob)
		if err != nil {
			return Result{}, err
		}
		if !found {
			// No corresponding path in this parent: its Origin is absent.
			continue
		}

		parentOrigin, err := e.Origins.Get(parent.Hash, path)
		if err != nil {
			if core.Is(err, core.NotFound) {
				continue
			}
			return Result{}, err
		}
		resolvedAnyParent = true

		hunks := linediff.Diff(string(parentOrigin.Blob), string(childOrigin.Blob), e.DiffOptions)

		var nextRemaining []*entrylist.Entry
		usedParent := false
		for _, ent := range remaining {
			stillChild, toParent := splitAgainstParent(ent, hunks, parentOrigin)
			nextRemaining = append(nextRemaining, stillChild...)
			reassigned = append(reassigned, toParent...)
			if len(toParent) > 0 {
				usedParent = true
			}
			e.Origins.Release(childOrigin)
		}
		if !usedParent {
			// Nothing mapped onto this parent (e.g. the whole diffed range
			// fell inside a parent-side addition): balance the Get above so
			// the Origin doesn't sit interned for the rest of the walk.
			e.Origins.Release(parentOrigin)
		}
		remaining = nextRemaining
	}

	// A sealed entry is a boundary when no attempted parent ever produced
	// an Origin to diff against - not merely because its particular lines
	// fell inside an addition region of a parent that did resolve.
	boundary := numParents == 0 || !resolvedAnyParent
	for _, ent := range remaining {
		ent.IsBoundary = ent.IsBoundary || boundary
	}

	return Result{Reassigned: reassigned, Sealed: remaining}, nil
}

// resolveParentPath determines which path in parent should be diffed
// against childPath, per spec.md section 4.4 step 1.
func (e *Engine) resolveParentPath(parent *object.Commit, childPath string, childContent []byte) (string, bool, error) {
	parentTree, err := parent.Tree()
	if err != nil {
		return "", false, core.Wrap(core.ObjectError, err)
	}

	if _, ferr := parentTree.File(childPath); ferr == nil {
		// Unchanged path: either a normal edit or nothing to do with
		// rename tracking at all.
		return childPath, true, nil
	}

	if !e.Flags.Has(core.TrackCopiesSameFile) {
		return "", false, nil
	}

	scope := renamedetect.DeletedOnly
	if e.Flags.Has(core.TrackCopiesSameCommitCopies) || e.Flags.Has(core.TrackCopiesAnyCommitCopies) {
		scope = renamedetect.AnyInParentTree
	}

	srcPath, _, ok := e.Renames.FindSource(parentTree, childPath, childContent, scope)
	if !ok {
		return "", false, nil
	}
	return srcPath, true, nil
}

type segment struct {
	sLno, numLines uint32
	added          bool
}

// carve splits [lo, hi) (a range in the child blob's line space) around
// the NewStart/NewLines of every hunk that adds lines, per spec.md section
// 4.4 step 4: segments falling inside an addition region cannot be
// attributed to the parent; segments outside map 1:1.
func carve(lo, hi uint32, hunks []linediff.Hunk) []segment {
	var segs []segment
	cursor := lo
	for _, h := range hunks {
		if h.NewLines == 0 {
			continue
		}
		hStart, hEnd := h.NewStart, h.NewStart+h.NewLines
		if hEnd <= cursor {
			continue
		}
		if hStart >= hi {
			break
		}
		if hStart > cursor {
			segs = append(segs, segment{sLno: cursor, numLines: hStart - cursor, added: false})
			cursor = hStart
		}
		end := hEnd
		if end > hi {
			end = hi
		}
		segs = append(segs, segment{sLno: cursor, numLines: end - cursor, added: true})
		cursor = end
		if cursor >= hi {
			break
		}
	}
	if cursor < hi {
		segs = append(segs, segment{sLno: cursor, numLines: hi - cursor, added: false})
	}
	return segs
}

// mapToParent maps a child-blob line (known not to fall inside any
// addition region) to its corresponding parent-blob line, by finding the
// constant offset (OldStart-NewStart) that held across the unchanged
// region containing x.
func mapToParent(hunks []linediff.Hunk, x uint32) uint32 {
	var lastOld, lastNew int64
	for _, h := range hunks {
		if uint32(h.NewStart) > x {
			return uint32(int64(x) + int64(h.OldStart) - int64(h.NewStart))
		}
		lastOld = int64(h.OldStart) + int64(h.OldLines)
		lastNew = int64(h.NewStart) + int64(h.NewLines)
	}
	return uint32(int64(x) + lastOld - lastNew)
}

// splitAgainstParent carves e by hunks and returns the pieces that remain
// suspected on the child (to retry with the next parent) and the pieces
// reassigned to parentOrigin (with s_lno remapped into its line space).
func splitAgainstParent(e *entrylist.Entry, hunks []linediff.Hunk, parentOrigin *origin.Origin) (stillChild, reassigned []*entrylist.Entry) {
	lo, hi := e.SLno, e.SLno+e.NumLines
	segs := carve(lo, hi, hunks)

	for _, seg := range segs {
		lnoOffset := seg.sLno - lo
		ent := &entrylist.Entry{
			Lno:      e.Lno + lnoOffset,
			NumLines: seg.numLines,
			ScoreMax: e.ScoreMax,
			Guilty:   e.Guilty,
		}
		if seg.added {
			ent.Suspect = origin.Retain(e.Suspect)
			ent.SLno = seg.sLno
			stillChild = append(stillChild, ent)
		} else {
			ent.Suspect = origin.Retain(parentOrigin)
			ent.SLno = mapToParent(hunks, seg.sLno)
			reassigned = append(reassigned, ent)
		}
	}
	return
}
