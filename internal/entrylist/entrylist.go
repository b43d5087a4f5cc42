// Package entrylist implements the Entry worklist from spec.md section 4.3:
// a singly linked list of unresolved line ranges sorted by final-blob line
// number, each currently suspected to originate at some Origin.
//
// The teacher's rbtree.RBTree is a balanced tree built for a different
// problem (cumulative interval statistics under many small updates); the
// Entry List's operations are all "split one node, splice into a sorted
// singly linked list", which a plain linked list expresses directly and
// which spec.md section 9 explicitly sanctions ("a singly linked list
// admits O(1) splice").
package entrylist

import "github.com/cyraxred/blamewalk/internal/origin"

// Entry is one unresolved line range, currently suspected to originate at
// Suspect. Entries form a list sorted by Lno ascending; ranges are
// disjoint and their union is the window being blamed minus holes already
// sealed into the Hunk Store.
type Entry struct {
	Suspect    *origin.Origin
	SLno       uint32 // 0-based starting line in the suspect's blob
	Lno        uint32 // 0-based starting line in the final blob
	NumLines   uint32
	ScoreMax   uint32
	Guilty     bool
	IsBoundary bool
	Next       *Entry
}

// List is the sorted singly linked worklist of Entry-s.
type List struct {
	Head *Entry
}

// PushSorted inserts e into the list keeping Lno ascending order.
func (l *List) PushSorted(e *Entry) {
	if l.Head == nil || e.Lno < l.Head.Lno {
		e.Next = l.Head
		l.Head = e
		return
	}
	prev := l.Head
	for prev.Next != nil && prev.Next.Lno <= e.Lno {
		prev = prev.Next
	}
	e.Next = prev.Next
	prev.Next = e
}

// Remove detaches e from the list. It is a no-op if e isn't present.
func (l *List) Remove(e *Entry) {
	if l.Head == e {
		l.Head = e.Next
		e.Next = nil
		return
	}
	for prev := l.Head; prev != nil; prev = prev.Next {
		if prev.Next == e {
			prev.Next = e.Next
			e.Next = nil
			return
		}
	}
}

// Empty reports whether the worklist has been fully resolved.
func (l *List) Empty() bool { return l.Head == nil }

// ForEachSuspect calls fn for every Entry currently suspecting o, in list
// order. The History Walker uses this to gather the batch of entries to
// pass-blame together against a dequeued Origin.
func (l *List) ForEachSuspect(o *origin.Origin, fn func(*Entry)) {
	for e := l.Head; e != nil; e = e.Next {
		if e.Suspect == o {
			fn(e)
		}
	}
}

// Split divides e at the relative line `at` (0 < at < e.NumLines) into a
// prefix (returned as e itself, shrunk) and a suffix sharing the same
// suspect. The suffix is NOT linked into any list; the caller inserts it.
// Matches libgit2's split_hunk_in_vector guard: a degenerate split point
// is a no-op that returns (e, nil).
func Split(e *Entry, at uint32) (prefix, suffix *Entry) {
	if at == 0 || at >= e.NumLines {
		return e, nil
	}

	suffix = &Entry{
		Suspect:    origin.Retain(e.Suspect),
		SLno:       e.SLno + at,
		Lno:        e.Lno + at,
		NumLines:   e.NumLines - at,
		ScoreMax:   e.ScoreMax,
		Guilty:     e.Guilty,
		IsBoundary: e.IsBoundary,
	}
	e.NumLines = at
	return e, suffix
}
