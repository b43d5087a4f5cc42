// Package testrepo builds small in-memory git repositories for tests,
// grounded on the standard go-git fixture pattern (memfs worktree over a
// memory.Storage) used throughout the go-git-dependent examples in the
// retrieval pack, rather than the teacher's own internal/test helper (which
// clones a real repository over the network - unsuitable for a unit test).
package testrepo

import (
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Builder commits files into an in-memory repository, advancing a
// synthetic clock by one hour per commit so History Walker ordering
// (newest commit time first) is deterministic across test runs.
type Builder struct {
	Repo *git.Repository

	wt   *git.Worktree
	when time.Time
}

// New returns an empty repository ready for commits.
func New() *Builder {
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		panic(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		panic(err)
	}
	return &Builder{Repo: repo, wt: wt, when: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Write creates or overwrites path with content and stages it, without committing.
func (b *Builder) Write(path, content string) {
	f, err := b.wt.Filesystem.Create(path)
	if err != nil {
		panic(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	if _, err := b.wt.Add(path); err != nil {
		panic(err)
	}
}

// Remove stages the removal of path.
func (b *Builder) Remove(path string) {
	if _, err := b.wt.Remove(path); err != nil {
		panic(err)
	}
}

// Commit records the current index under msg and returns the new commit
// hash. HEAD is always an implicit parent; extraParents, if given, are
// added alongside it to build a merge commit with more than one ancestry
// path.
func (b *Builder) Commit(msg string, extraParents ...plumbing.Hash) plumbing.Hash {
	b.when = b.when.Add(time.Hour)
	sig := &object.Signature{Name: "Test Author", Email: "test@example.com", When: b.when}
	opts := &git.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true}
	if len(extraParents) > 0 {
		head, err := b.Repo.Head()
		if err != nil {
			panic(err)
		}
		opts.Parents = append([]plumbing.Hash{head.Hash()}, extraParents...)
	}
	hash, err := b.wt.Commit(msg, opts)
	if err != nil {
		panic(err)
	}
	return hash
}

// WriteCommit is Write followed immediately by Commit, for the common
// single-file-change case.
func (b *Builder) WriteCommit(msg, path, content string, extraParents ...plumbing.Hash) plumbing.Hash {
	b.Write(path, content)
	return b.Commit(msg, extraParents...)
}

// Checkout detaches HEAD and resets the worktree to hash, for building a
// second branch that diverges from an earlier commit before merging it
// back with an extra parent passed to Commit.
func (b *Builder) Checkout(hash plumbing.Hash) {
	if err := b.wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		panic(err)
	}
}
