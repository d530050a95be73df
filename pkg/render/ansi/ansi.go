// Package ansi renders an annotated file for a terminal.
package ansi

import (
	"bufio"
	"io"

	"github.com/fatih/color"
	"github.com/walteh/clang-highlight/pkg/annotate"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// Style is the colouring of one token kind
type Style struct {
	Attrs []color.Attribute
}

// Palette maps kinds to styles; kinds without an entry are printed plain
type Palette map[token.Kind]Style

// DefaultPalette follows the m-dark colours where a terminal colour is close enough
var DefaultPalette = Palette{
	token.KindKeyword:                    {Attrs: []color.Attribute{color.FgHiWhite, color.Bold}},
	token.KindName:                       {Attrs: []color.Attribute{color.FgWhite}},
	token.KindStringLiteral:              {Attrs: []color.Attribute{color.FgYellow}},
	token.KindStringLiteralEscape:        {Attrs: []color.Attribute{color.FgHiYellow, color.Bold}},
	token.KindStringLiteralInterpolation: {Attrs: []color.Attribute{color.FgHiYellow}},
	token.KindNumberLiteral:              {Attrs: []color.Attribute{color.FgCyan}},
	token.KindOtherLiteral:               {Attrs: []color.Attribute{color.FgCyan}},
	token.KindOperator:                   {Attrs: []color.Attribute{color.FgHiWhite}},
	token.KindPunctuation:                {Attrs: []color.Attribute{color.Faint}},
	token.KindComment:                    {Attrs: []color.Attribute{color.FgHiBlack}},
	token.KindPreprocessor:               {Attrs: []color.Attribute{color.FgMagenta}},
	token.KindPreprocessorFile:           {Attrs: []color.Attribute{color.FgHiMagenta}},
	token.KindVariable:                   {Attrs: []color.Attribute{color.FgHiCyan}},
}

type Options struct {
	Palette Palette

	// Color forces colour on or off; nil leaves the decision to fatih/color's terminal
	// detection
	Color *bool
}

// Render writes doc with one escape sequence per token. Linked tokens are underlined.
func Render(w io.Writer, doc *annotate.Result, opts Options) error {
	palette := opts.Palette
	if palette == nil {
		palette = DefaultPalette
	}

	type styleKey struct {
		kind   token.Kind
		linked bool
	}
	styles := map[styleKey]*color.Color{}
	styleFor := func(tok *token.Token) *color.Color {
		style, ok := palette[tok.Kind]
		if !ok && tok.Link == nil {
			return nil
		}

		key := styleKey{kind: tok.Kind, linked: tok.Link != nil}
		if c, ok := styles[key]; ok {
			return c
		}

		c := color.New(style.Attrs...)
		if tok.Link != nil {
			c.Add(color.Underline)
		}
		if opts.Color != nil {
			if *opts.Color {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
		styles[key] = c
		return c
	}

	bw := bufio.NewWriter(w)
	buf := doc.Buffer
	pos := 0
	for tok := range doc.Index.All() {
		if tok.Offset > pos {
			bw.Write(buf[pos:tok.Offset])
		}

		text := tok.Text(buf)
		if c := styleFor(tok); c != nil {
			bw.WriteString(c.Sprint(string(text)))
		} else {
			bw.Write(text)
		}
		pos = tok.End()
	}
	if pos < len(buf) {
		bw.Write(buf[pos:])
	}

	if err := bw.Flush(); err != nil {
		return errors.Errorf("writing terminal output: %w", err)
	}
	return nil
}
