package template

import (
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Position is a zero-based line/column pair in the original source text.
type Position struct {
	Line   int
	Column int
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// lineStartOffsets returns the absolute offset of the first character of each
// line. Index 0 is always 0; a source with no line breaks yields exactly one
// entry, which keeps first-line lookups out of the terminator arithmetic.
func lineStartOffsets(source string) []int {
	starts := []int{0}
	for _, m := range lineBreak.FindAllStringIndex(source, -1) {
		starts = append(starts, m[1])
	}
	return starts
}

// PositionAt converts an absolute character offset into a Position. The line
// is the number of line terminators strictly before the offset; the column is
// measured from the character following the last of them.
func (d *Document) PositionAt(offset int) Position {
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line, Column: offset - d.lineStarts[line]}
}

// OffsetOf converts a node's 1-based line/column into an absolute offset. For
// tagged nodes the offset points at the leading '!' of the tag, which is what
// the tag skip table in tags.go is calibrated against.
func (d *Document) OffsetOf(node *yaml.Node) int {
	line := node.Line - 1
	if line < 0 {
		line = 0
	}
	if line >= len(d.lineStarts) {
		line = len(d.lineStarts) - 1
	}
	col := node.Column - 1
	if col < 0 {
		col = 0
	}
	return d.lineStarts[line] + col
}
