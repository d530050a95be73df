/*
Package semtok encodes an annotated file as LSP semantic tokens.

	  annotate.Result
	         |
	   Tokens: one Token per line segment
	         |
	         v
	  +------------+
	  |  []Token   |
	  +------------+
	         |
	   Encode: 5 integers per token
	         |
	         v
	  [deltaLine, deltaStart, length, type, modifiers] ...

Lines and columns are 0-based and columns count bytes, matching the "utf-8" position
encoding. Tokens spanning several lines, such as block comments, are split at each line
break.
*/
package semtok

import (
	"bytes"
	"encoding/json"
	"io"

	"fortio.org/safecast"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/position"
	"gitlab.com/tozd/go/errors"
)

// Token is one encodable piece of an annotated token, never spanning a line break
type Token struct {
	Type     TokenType
	Modifier TokenModifier
	Range    position.RawPosition
}

// Document is the serialized form written by Render
type Document struct {
	File   string   `json:"file"`
	Legend Legend   `json:"legend"`
	Data   []uint32 `json:"data"`
}

// Tokens returns the encodable tokens of doc in buffer order
func Tokens(doc *annotate.Result) []Token {
	buf := doc.Buffer
	var out []Token

	for tok := range doc.Index.All() {
		typ, ok := TypeOf(tok.Kind)
		if !ok {
			continue
		}
		mod := modifierOf(tok.Link)

		start, end := tok.Offset, tok.End()
		for start < end {
			segEnd := end
			nl := bytes.IndexByte(buf[start:end], '\n')
			if nl >= 0 {
				segEnd = start + nl
			}
			text := bytes.TrimSuffix(buf[start:segEnd], []byte("\r"))
			if len(text) > 0 {
				out = append(out, Token{
					Type:     typ,
					Modifier: mod,
					Range:    position.RawPosition{Offset: start, Text: string(text)},
				})
			}
			if nl < 0 {
				break
			}
			start = segEnd + 1
		}
	}

	return out
}

// Encode delta encodes toks, which must be sorted and must not span lines
func Encode(buf []byte, toks []Token) ([]uint32, error) {
	table := position.NewTable(buf)
	data := make([]uint32, 0, len(toks)*5)

	prevLine, prevCol := 0, 0
	for _, tok := range toks {
		place := table.Place(tok.Range.Offset)
		line, col := place.Line-1, place.Column-1

		deltaLine := line - prevLine
		deltaStart := col
		if deltaLine == 0 {
			deltaStart = col - prevCol
		}
		if deltaLine < 0 || deltaStart < 0 {
			return nil, errors.Errorf("token %s out of order", tok.Range)
		}

		var row [5]uint32
		for i, v := range []int{deltaLine, deltaStart, tok.Range.Length()} {
			n, err := safecast.Conv[uint32](v)
			if err != nil {
				return nil, errors.Errorf("encoding token %s: %w", tok.Range, err)
			}
			row[i] = n
		}
		row[3] = uint32(tok.Type)
		row[4] = uint32(tok.Modifier)

		data = append(data, row[:]...)
		prevLine, prevCol = line, col
	}

	return data, nil
}

// Render writes doc as a JSON Document
func Render(w io.Writer, doc *annotate.Result) error {
	data, err := Encode(doc.Buffer, Tokens(doc))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(Document{File: doc.File, Legend: DefaultLegend(), Data: data}); err != nil {
		return errors.Errorf("writing semantic tokens: %w", err)
	}
	return nil
}
