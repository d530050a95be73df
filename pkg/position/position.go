// Package position converts between byte offsets and 1-based line/column places in a
// source buffer.
package position

import (
	"fmt"
	"sort"
)

// Place is a 1-based line and a 1-based byte column
type Place struct {
	Line   int
	Column int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// RawPosition is a piece of text at an offset in the buffer
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Table indexes the line starts of one buffer
type Table struct {
	size   int
	starts []int
}

func NewTable(buf []byte) *Table {
	starts := []int{0}
	for i, b := range buf {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Table{size: len(buf), starts: starts}
}

// Place returns the line and column of offset. Offsets past the end are clamped.
func (me *Table) Place(offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > me.size {
		offset = me.size
	}
	line := sort.Search(len(me.starts), func(i int) bool { return me.starts[i] > offset }) - 1
	return Place{Line: line + 1, Column: offset - me.starts[line] + 1}
}
