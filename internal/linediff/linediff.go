// Package linediff is the line-oriented diff engine spec.md section 6.2
// treats as an external collaborator. It is grounded directly on the
// teacher's internal/plumbing.FileDiff.Consume: tokenize per line with
// diffmatchpatch.DiffLinesToRunes, run the rune-level LCS diff, then
// reduce the result into old/new hunk bookkeeping.
package linediff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOrigin tags a line within a Hunk.
type LineOrigin int

const (
	Context LineOrigin = iota
	Addition
	Deletion
)

// Line is one line of a Hunk's content, tagged with its origin.
type Line struct {
	Origin LineOrigin
	Text   string
}

// Hunk is a contiguous change region, matching the old_start/old_lines/
// new_start/new_lines shape spec.md section 1 requires of the diff engine.
// Start fields are 0-based.
type Hunk struct {
	OldStart, OldLines uint32
	NewStart, NewLines uint32
	Lines              []Line
}

// Options toggles diff behavior.
type Options struct {
	// IgnoreWhitespace strips leading/trailing horizontal whitespace from
	// each line before tokenizing, so a pure reindent doesn't count as a
	// change. Mirrors spec.md's IGNORE_WHITESPACE flag.
	IgnoreWhitespace bool
	// CleanupSemantic applies diffmatchpatch's semantic-lossless cleanup.
	// Disabled by default for blame: see DESIGN.md - semantic cleanup can
	// relocate a change's line boundary in ways that break 1:1 line
	// attribution between old and new.
	CleanupSemantic bool
}

// Diff computes the line hunks between oldText and newText.
func Diff(oldText, newText string, opts Options) []Hunk {
	dmp := diffmatchpatch.New()

	oldTok, newTok := oldText, newText
	if opts.IgnoreWhitespace {
		oldTok = trimLines(oldTok)
		newTok = trimLines(newTok)
	}

	oldRunes, newRunes, lineArray := dmp.DiffLinesToRunes(oldTok, newTok)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	if opts.CleanupSemantic {
		diffs = dmp.DiffCleanupMerge(dmp.DiffCleanupSemanticLossless(diffs))
	}

	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	return reduceToHunks(diffs, lineArray, oldLines, newLines)
}

// trimLines strips leading/trailing ASCII horizontal whitespace from every
// line, preserving the line count and separators.
func trimLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.Trim(l, " \t\r")
	}
	return strings.Join(lines, "\n")
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// reduceToHunks walks the rune-level diff (each rune standing for one
// whole line via lineArray) and accumulates contiguous non-equal regions
// into Hunks, tracking old/new line cursors throughout - equal regions
// only advance the cursors without emitting a hunk.
func reduceToHunks(diffs []diffmatchpatch.Diff, lineArray []string, oldLines, newLines []string) []Hunk {
	_ = lineArray // kept for symmetry with DiffLinesToRunes' signature; text comes from oldLines/newLines

	var hunks []Hunk
	var oldCursor, newCursor uint32
	var current *Hunk

	flush := func() {
		if current != nil {
			hunks = append(hunks, *current)
			current = nil
		}
	}

	for _, d := range diffs {
		n := uint32(len([]rune(d.Text)))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldCursor += n
			newCursor += n
		case diffmatchpatch.DiffDelete:
			if current == nil {
				current = &Hunk{OldStart: oldCursor, NewStart: newCursor}
			}
			for i := uint32(0); i < n; i++ {
				current.Lines = append(current.Lines, Line{Origin: Deletion, Text: lineAt(oldLines, oldCursor+i)})
			}
			current.OldLines += n
			oldCursor += n
		case diffmatchpatch.DiffInsert:
			if current == nil {
				current = &Hunk{OldStart: oldCursor, NewStart: newCursor}
			}
			for i := uint32(0); i < n; i++ {
				current.Lines = append(current.Lines, Line{Origin: Addition, Text: lineAt(newLines, newCursor+i)})
			}
			current.NewLines += n
			newCursor += n
		}
	}
	flush()
	return hunks
}

func lineAt(lines []string, i uint32) string {
	if int(i) >= len(lines) {
		return ""
	}
	return lines[i]
}
