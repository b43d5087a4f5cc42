// Package historywalk implements the History Walker from spec.md section
// 4.5: a priority queue over commits ordered by commit time descending
// (ties broken by hash ascending, for deterministic output), repeatedly
// dequeuing the most recent unresolved suspect and running the Pass-Blame
// Engine against it until every Entry has been sealed into the Hunk Store.
package historywalk

import (
	"bytes"
	"container/heap"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/entrylist"
	"github.com/cyraxred/blamewalk/internal/hunkstore"
	"github.com/cyraxred/blamewalk/internal/mailmap"
	"github.com/cyraxred/blamewalk/internal/origin"
	"github.com/cyraxred/blamewalk/internal/passblame"
)

// commitSource is the subset of *git.Repository the walker needs.
type commitSource interface {
	CommitObject(plumbing.Hash) (*object.Commit, error)
}

// Walker owns the active worklist and drives it to completion.
type Walker struct {
	repo    commitSource
	origins *origin.Cache
	engine  *passblame.Engine
	mailmap *mailmap.Mailmap

	entries      entrylist.List
	hunks        *hunkstore.Store
	oldestCommit plumbing.Hash

	commits map[plumbing.Hash]*object.Commit
	queue   priorityQueue
	queued  map[*origin.Origin]bool
}

// New returns a Walker ready to have its initial Entry seeded and Run called.
func New(repo commitSource, origins *origin.Cache, engine *passblame.Engine, mm *mailmap.Mailmap, oldestCommit plumbing.Hash) *Walker {
	return &Walker{
		repo:         repo,
		origins:      origins,
		engine:       engine,
		mailmap:      mm,
		hunks:        hunkstore.New(),
		oldestCommit: oldestCommit,
		commits:      map[plumbing.Hash]*object.Commit{},
		queued:       map[*origin.Origin]bool{},
	}
}

// Seed inserts the initial Entry (the whole requested line window,
// suspected at the newest commit) and primes the queue.
func (w *Walker) Seed(e *entrylist.Entry) error {
	w.entries.PushSorted(e)
	return w.enqueue(e.Suspect)
}

// Run drains the worklist, returning the populated Hunk Store once every
// Entry has been sealed.
func (w *Walker) Run() (*hunkstore.Store, error) {
	for w.queue.Len() > 0 {
		item := heap.Pop(&w.queue).(*queueItem)
		o := item.origin
		delete(w.queued, o)

		var batch []*entrylist.Entry
		w.entries.ForEachSuspect(o, func(e *entrylist.Entry) {
			batch = append(batch, e)
		})
		if len(batch) == 0 {
			continue
		}
		for _, e := range batch {
			w.entries.Remove(e)
		}

		commit, err := w.commit(o.Commit)
		if err != nil {
			return nil, err
		}

		result, err := w.engine.Run(commit, o, batch, w.oldestCommit)
		if err != nil {
			return nil, err
		}

		for _, ent := range result.Reassigned {
			w.entries.PushSorted(ent)
			if err := w.enqueue(ent.Suspect); err != nil {
				return nil, err
			}
		}
		for _, ent := range result.Sealed {
			w.hunks.InsertSorted(hunkstore.FromEntry(ent, commit, w.mailmap))
		}
	}
	return w.hunks, nil
}

func (w *Walker) commit(h plumbing.Hash) (*object.Commit, error) {
	if c, ok := w.commits[h]; ok {
		return c, nil
	}
	c, err := w.repo.CommitObject(h)
	if err != nil {
		return nil, core.Wrap(core.ObjectError, err)
	}
	w.commits[h] = c
	return c, nil
}

func (w *Walker) enqueue(o *origin.Origin) error {
	if w.queued[o] {
		return nil
	}
	commit, err := w.commit(o.Commit)
	if err != nil {
		return err
	}
	w.queued[o] = true
	heap.Push(&w.queue, &queueItem{origin: o, when: commit.Committer.When.Unix(), hash: o.Commit})
	return nil
}

// queueItem is one pending Origin awaiting pass-blame, ordered by the
// commit time of its resident commit.
type queueItem struct {
	origin *origin.Origin
	when   int64
	hash   plumbing.Hash
}

// priorityQueue orders queueItems newest-first, ties broken by hash
// ascending so walk order (and therefore output) is deterministic.
type priorityQueue []*queueItem

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	if q[i].when != q[j].when {
		return q[i].when > q[j].when
	}
	return bytes.Compare(q[i].hash[:], q[j].hash[:]) < 0
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x interface{}) {
	*q = append(*q, x.(*queueItem))
}

func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
