// Package tokindex holds the offset-keyed token index that every annotation pass mutates.
package tokindex

import (
	"iter"
	"slices"

	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// ErrOverlap is returned when an insert would make two entries overlap
var ErrOverlap = errors.Base("token overlaps an existing entry")

// Index is an ordered map from byte offset to token. Entries never overlap and are kept
// sorted by offset.
type Index struct {
	entries []*token.Token
}

// New returns an empty index
func New() *Index {
	return &Index{}
}

// Len returns the number of entries
func (me *Index) Len() int {
	return len(me.entries)
}

// At returns the entry at position i of the ordered sequence
func (me *Index) At(i int) *token.Token {
	return me.entries[i]
}

// All iterates the entries in offset order
func (me *Index) All() iter.Seq[*token.Token] {
	return func(yield func(*token.Token) bool) {
		for _, tok := range me.entries {
			if !yield(tok) {
				return
			}
		}
	}
}

// LowerBound returns the position of the first entry whose offset is >= offset, or Len()
// when there is none.
func (me *Index) LowerBound(offset int) int {
	i, _ := slices.BinarySearchFunc(me.entries, offset, func(tok *token.Token, target int) int {
		return tok.Offset - target
	})
	return i
}

// Insert adds tok. An entry already keyed at tok.Offset is replaced; an insert that would
// overlap a neighbouring entry fails with ErrOverlap.
func (me *Index) Insert(tok *token.Token) error {
	if tok.Length < 0 {
		return errors.Errorf("inserting token at %d: negative length %d", tok.Offset, tok.Length)
	}

	i := me.LowerBound(tok.Offset)
	replace := i < len(me.entries) && me.entries[i].Offset == tok.Offset

	if i > 0 && me.entries[i-1].End() > tok.Offset {
		return errors.WithDetails(ErrOverlap, "offset", tok.Offset, "previous", me.entries[i-1].Offset)
	}

	next := i
	if replace {
		next++
	}
	if next < len(me.entries) && tok.End() > me.entries[next].Offset {
		return errors.WithDetails(ErrOverlap, "offset", tok.Offset, "next", me.entries[next].Offset)
	}

	if replace {
		me.entries[i] = tok
		return nil
	}

	me.entries = slices.Insert(me.entries, i, tok)
	return nil
}

// FindExact returns the entry keyed exactly at offset
func (me *Index) FindExact(offset int) (*token.Token, bool) {
	i := me.LowerBound(offset)
	if i < len(me.entries) && me.entries[i].Offset == offset {
		return me.entries[i], true
	}
	return nil, false
}

// FindOrSplit returns the entry starting exactly at offset. When offset falls strictly
// inside an entry, that entry is split in two at offset; both halves keep the original
// kind and link and the second half is returned. Offsets in a gap or before the first
// entry are reported as not found.
func (me *Index) FindOrSplit(offset int) (*token.Token, bool) {
	i := me.LowerBound(offset)
	if i < len(me.entries) && me.entries[i].Offset == offset {
		return me.entries[i], true
	}

	if i == 0 {
		return nil, false
	}

	prev := me.entries[i-1]
	if !prev.Contains(offset) {
		return nil, false
	}

	second := &token.Token{
		Offset: offset,
		Length: prev.End() - offset,
		Kind:   prev.Kind,
		Link:   prev.Link.Clone(),
	}
	prev.Length = offset - prev.Offset

	me.entries = slices.Insert(me.entries, i, second)
	return second, true
}

// Overwrite applies the merge policy for a later pass: a non-nil kind replaces the
// classification and a non-nil link replaces any link already attached.
func (me *Index) Overwrite(tok *token.Token, kind *token.Kind, link *token.Link) {
	if kind != nil {
		tok.Kind = *kind
	}
	if link != nil {
		tok.Link = link
	}
}

// RemoveRange deletes every entry whose offset lies in [begin, end) and returns how many
// entries were removed.
func (me *Index) RemoveRange(begin, end int) int {
	from := me.LowerBound(begin)
	to := me.LowerBound(end)
	if to <= from {
		return 0
	}
	me.entries = slices.Delete(me.entries, from, to)
	return to - from
}

// Covered returns the total number of bytes covered by entries
func (me *Index) Covered() int {
	total := 0
	for _, tok := range me.entries {
		total += tok.Length
	}
	return total
}

// Validate checks the ordering and non-overlap invariants
func (me *Index) Validate() error {
	for i := 1; i < len(me.entries); i++ {
		prev, cur := me.entries[i-1], me.entries[i]
		if prev.Offset >= cur.Offset {
			return errors.Errorf("entries out of order at %d and %d", prev.Offset, cur.Offset)
		}
		if prev.End() > cur.Offset {
			return errors.WithDetails(ErrOverlap, "offset", cur.Offset, "previous", prev.Offset)
		}
	}
	return nil
}
