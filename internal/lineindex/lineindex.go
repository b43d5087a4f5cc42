// Package lineindex computes byte offsets of each line in a blob, the basis
// for translating between a blob's line numbers and byte ranges.
package lineindex

import "github.com/cyraxred/blamewalk/internal/core"

// Index holds the byte offset of the start of every line in a buffer, plus
// a sentinel final entry equal to the buffer length.
type Index struct {
	Offsets  []uint32
	NumLines uint32
}

// Build constructs the Index for buf. A trailing line with no final '\n'
// still counts as one more line, matching libgit2's index_blob_lines.
func Build(buf []byte) *Index {
	idx := &Index{}
	if len(buf) == 0 {
		idx.Offsets = []uint32{0}
		return idx
	}

	bol := true
	var num uint32
	for i, b := range buf {
		if bol {
			idx.Offsets = append(idx.Offsets, uint32(i))
			bol = false
		}
		if b == '\n' {
			num++
			bol = true
		}
	}
	idx.Offsets = append(idx.Offsets, uint32(len(buf)))

	incomplete := uint32(0)
	if buf[len(buf)-1] != '\n' {
		incomplete = 1
	}
	idx.NumLines = num + incomplete
	return idx
}

// LineOffset returns the byte offset of the start of the given 0-based line.
func (idx *Index) LineOffset(line uint32) uint32 {
	return idx.Offsets[line]
}

// Window clamps [minLine, maxLine] (1-based, inclusive) against the index,
// per spec.md section 4.1: maxLine 0 (or beyond EOF) means "to file end",
// and the result is never narrower than a single line.
func (idx *Index) Window(minLine, maxLine uint32) (uint32, uint32, error) {
	if minLine == 0 {
		minLine = 1
	}
	if minLine > idx.NumLines {
		return 0, 0, core.Newf(core.Invalid, "min_line %d exceeds file length %d", minLine, idx.NumLines)
	}
	if maxLine == 0 || maxLine > idx.NumLines {
		maxLine = idx.NumLines
	}
	if minLine > maxLine {
		return 0, 0, core.Newf(core.Invalid, "min_line %d exceeds max_line %d", minLine, maxLine)
	}
	return minLine, maxLine, nil
}
