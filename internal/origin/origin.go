// Package origin implements the Origin tuple from spec.md section 3: a
// suspected source of lines, de-duplicated per (commit, path) and shared
// across every Entry that currently suspects it.
package origin

import (
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cyraxred/blamewalk/internal/objectstore"
)

// key identifies an Origin; two Origins are equal when commit and path match.
type key struct {
	commit plumbing.Hash
	path   string
}

// Origin is a (commit, path) pair resolved to blob content, refcounted so
// it can be released once no Entry references it anymore.
type Origin struct {
	Commit   plumbing.Hash
	Path     string
	Blob     []byte
	refcount int
}

// Cache interns Origins per walk so the same suspect is never reloaded.
type Cache struct {
	store *objectstore.Store
	byKey map[key]*Origin
}

// NewCache returns an empty, walk-scoped Origin cache.
func NewCache(store *objectstore.Store) *Cache {
	return &Cache{store: store, byKey: map[key]*Origin{}}
}

// Get returns the interned Origin for (commit, path), loading and caching
// its blob on first use. A missing path surfaces the store's NotFound
// error unchanged, for the caller to treat as a boundary.
func (c *Cache) Get(commit plumbing.Hash, path string) (*Origin, error) {
	k := key{commit, path}
	if o, ok := c.byKey[k]; ok {
		o.refcount++
		return o, nil
	}

	blob, err := c.store.Load(commit, path)
	if err != nil {
		return nil, err
	}

	o := &Origin{Commit: commit, Path: path, Blob: blob, refcount: 1}
	c.byKey[k] = o
	return o, nil
}

// Release decrements the Origin's refcount and drops it from the cache
// once no Entry references it anymore.
func (c *Cache) Release(o *Origin) {
	if o == nil {
		return
	}
	o.refcount--
	if o.refcount <= 0 {
		delete(c.byKey, key{o.Commit, o.Path})
	}
}

// Retain increments the Origin's refcount, used when a second Entry starts
// pointing at an already-interned Origin (e.g. after a split).
func Retain(o *Origin) *Origin {
	if o != nil {
		o.refcount++
	}
	return o
}
