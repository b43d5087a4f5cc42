// Package renamedetect locates the path a blob was known under in a
// parent tree, when it is absent there under its current name. It is
// grounded on the teacher's internal/plumbing.RenameAnalysis: an exact
// content-hash match first (free renames and copies), then a Levenshtein
// similarity ranking bounded by SimilarityThreshold and Timeout.
package renamedetect

import (
	"bytes"
	"io"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cyraxred/blamewalk/internal/core"
	"github.com/cyraxred/blamewalk/internal/levenshtein"
)

const (
	// DefaultSimilarityThreshold matches the teacher's RenameAnalysisDefaultThreshold.
	DefaultSimilarityThreshold = 80
	// DefaultTimeout matches the teacher's RenameAnalysisDefaultTimeout.
	DefaultTimeout = 60 * time.Second
	// MinimumBlobSize below which every blob is considered "small" and
	// compared directly rather than ranked, mirroring RenameAnalysisMinimumSize.
	MinimumBlobSize = 32
	// MaxCandidates bounds how many parent-tree entries are scanned for a
	// similarity match, mirroring RenameAnalysisMaxCandidates.
	MaxCandidates = 50
)

// Scope controls which blobs in the parent tree are considered as sources.
type Scope int

const (
	// DeletedOnly considers every file in the parent tree except the one
	// at childPath itself. The child tree is not consulted, so a candidate
	// that still exists in the child (a copy rather than a move) is not
	// excluded.
	DeletedOnly Scope = iota
	// AnyInParentTree considers every file in the parent tree, including
	// the one at childPath.
	AnyInParentTree
)

// Detector finds rename/copy sources.
type Detector struct {
	SimilarityThreshold int
	Timeout             time.Duration
	Logger              core.Logger
}

// New returns a Detector configured with the teacher's defaults.
func New() *Detector {
	return &Detector{SimilarityThreshold: DefaultSimilarityThreshold, Timeout: DefaultTimeout, Logger: core.NoopLogger{}}
}

type candidate struct {
	path    string
	content []byte
}

// FindSource searches parentTree for the blob childContent (known in the
// child tree as childPath) was most likely copied or renamed from.
// Returns ok=false if nothing clears the similarity threshold; this is
// non-fatal per spec.md section 7 - the caller (which has already found
// no file at childPath in the parent) treats that parent as having no
// Origin for the entry.
func (d *Detector) FindSource(parentTree *object.Tree, childPath string, childContent []byte, scope Scope) (path string, content []byte, ok bool) {
	deadline := time.Now().Add(d.timeout())

	candidates, err := d.collectCandidates(parentTree, childPath, scope)
	if err != nil {
		d.logger().Warnf("rename detection: failed to walk parent tree: %v", err)
		return "", nil, false
	}

	// Stage 1: exact content match, free and unbounded by timeout/candidate caps.
	for _, c := range candidates {
		if string(c.content) == string(childContent) {
			return c.path, c.content, true
		}
	}

	if len(childContent) < MinimumBlobSize {
		// Too small to rank meaningfully; only exact matches count, per
		// RenameAnalysisMinimumSize.
		return "", nil, false
	}

	maxCandidates := MaxCandidates
	if len(candidates) > 1000 {
		maxCandidates = 1
	}

	lev := &levenshtein.Context{}
	bestScore := 0
	var best candidate
	scanned := 0
	for _, c := range candidates {
		if scanned >= maxCandidates || time.Now().After(deadline) {
			break
		}
		if len(c.content) < MinimumBlobSize {
			continue
		}
		scanned++
		score := similarity(lev, string(childContent), string(c.content))
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore >= d.SimilarityThreshold {
		return best.path, best.content, true
	}
	return "", nil, false
}

// similarity returns a 0-100 score, the same "percentage of common
// content" semantics as cgit's -M/-X rename-threshold.
func similarity(lev *levenshtein.Context, a, b string) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := lev.Distance(a, b)
	score := 100 - (dist*100)/maxLen
	if score < 0 {
		return 0
	}
	return score
}

func (d *Detector) collectCandidates(parentTree *object.Tree, childPath string, scope Scope) ([]candidate, error) {
	var out []candidate
	walker := object.NewTreeWalker(parentTree, true, nil)
	defer walker.Close()

	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		if !entry.Mode.IsFile() {
			continue
		}
		if scope == DeletedOnly && name == childPath {
			continue
		}
		if filepath.Base(name) == "" {
			continue
		}
		file, err := parentTree.TreeEntryFile(&entry)
		if err != nil {
			continue
		}
		reader, err := file.Reader()
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		_, err = io.Copy(&buf, reader)
		reader.Close()
		if err != nil {
			continue
		}
		out = append(out, candidate{path: name, content: buf.Bytes()})
	}
	return out, nil
}

func (d *Detector) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DefaultTimeout
	}
	return d.Timeout
}

func (d *Detector) logger() core.Logger {
	if d.Logger == nil {
		return core.NoopLogger{}
	}
	return d.Logger
}
