// Package objectstore loads blob content by walking a commit's tree to a
// path, the "object database" collaborator spec.md treats as external.
// It is grounded on the teacher's internal/plumbing.CachedBlob: read the
// whole blob into memory up front and memoize it.
package objectstore

import (
	"bytes"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/cyraxred/blamewalk/internal/core"
)

// Store loads blob content by (commit, path) and caches it by blob hash.
type Store struct {
	repo repository

	// byBlob memoizes reads of the same blob hash, since many (commit,path)
	// origins can resolve to the exact same blob across history.
	byBlob map[plumbing.Hash][]byte
}

// repository is the subset of *git.Repository the store needs, narrowed so
// tests can fake it without a real on-disk repository.
type repository interface {
	CommitObject(plumbing.Hash) (*object.Commit, error)
}

// New returns a Store backed by repo.
func New(repo repository) *Store {
	return &Store{repo: repo, byBlob: map[plumbing.Hash][]byte{}}
}

// ErrNotFound is returned (wrapped) when path does not exist at commitID or
// names something other than a regular file.
var ErrNotFound = errors.New("path not found in tree")

// Load resolves path within commitID's tree and returns its full content.
// A missing path (or one naming a non-blob, e.g. a submodule or directory)
// reports core.NotFound: the caller treats that as a boundary for the
// entry, per spec.md section 4.2, not a fatal error.
func (s *Store) Load(commitID plumbing.Hash, path string) ([]byte, error) {
	commit, err := s.repo.CommitObject(commitID)
	if err != nil {
		return nil, core.Wrap(core.ObjectError, errors.Wrapf(err, "commit %s", commitID))
	}

	file, err := commit.File(path)
	if err != nil {
		return nil, core.Wrap(core.NotFound, errors.Wrapf(ErrNotFound, "%s @ %s", path, commitID))
	}

	if content, ok := s.byBlob[file.Hash]; ok {
		return content, nil
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, core.Wrap(core.ObjectError, err)
	}
	defer reader.Close()

	buf := new(bytes.Buffer)
	buf.Grow(int(file.Size))
	if _, err := io.Copy(buf, reader); err != nil {
		return nil, core.Wrap(core.ObjectError, err)
	}

	content := buf.Bytes()
	s.byBlob[file.Hash] = content
	return content, nil
}
