// Package jsonout renders an annotated file as an ordered token list, as JSON or as the
// same document encoded with MessagePack.
package jsonout

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/config"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

type Document struct {
	File   string  `json:"file"`
	Tokens []Token `json:"tokens"`
}

type Token struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Type   string `json:"type"`
	Link   *Link  `json:"link,omitempty"`
}

type Link struct {
	File           string   `json:"file"`
	Line           int      `json:"line"`
	Column         int      `json:"column"`
	Name           string   `json:"name"`
	QualifiedName  string   `json:"qualified_name"`
	ParameterTypes []string `json:"parameter_types,omitempty"`
	CppRef         string   `json:"cppref,omitempty"`
}

// Build converts doc to its serializable form, filtering punctuation per mode
func Build(doc *annotate.Result, mode config.Punctuation) *Document {
	out := &Document{File: doc.File, Tokens: []Token{}}

	for tok := range doc.Index.All() {
		if tok.Kind == token.KindPunctuation {
			switch mode {
			case config.PunctuationSkip:
				continue
			case config.PunctuationLinkedOnly:
				if tok.Link == nil {
					continue
				}
			}
		}

		t := Token{Offset: tok.Offset, Length: tok.Length, Type: tok.Kind.String()}
		if l := tok.Link; l != nil {
			t.Link = &Link{
				File:           l.File,
				Line:           l.Line,
				Column:         l.Column,
				Name:           l.Name,
				QualifiedName:  l.QualifiedName,
				ParameterTypes: l.ParameterTypes,
				CppRef:         l.CppRef,
			}
		}
		out.Tokens = append(out.Tokens, t)
	}

	return out
}

// Render writes doc as JSON indented by two spaces, followed by a newline
func Render(w io.Writer, doc *annotate.Result, mode config.Punctuation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Build(doc, mode)); err != nil {
		return errors.Errorf("writing JSON: %w", err)
	}
	return nil
}

// RenderMsgpack writes doc as MessagePack using the JSON field names
func RenderMsgpack(w io.Writer, doc *annotate.Result, mode config.Punctuation) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Build(doc, mode)); err != nil {
		return errors.Errorf("writing MessagePack: %w", err)
	}
	return nil
}
