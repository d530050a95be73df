// Package pprecord derives a preprocessing record from the raw tokens of the main file.
//
// The record holds inclusion directives, macro definitions made in the main file and
// macro expansion sites. Macros defined outside the main file come from a Table, usually
// parsed from `clang -E -dD` output with ParseDefines. Code in conditional branches that
// are known to be disabled contributes nothing; branches whose condition cannot be decided
// from the known macros are treated as enabled.
package pprecord

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/position"
)

// Macro is a known macro at some point of the main file
type Macro struct {
	// Definition is nil for macros without a real definition site, such as builtins
	Definition *frontend.MacroDefinition

	// FunctionLike macros only expand when followed by an opening parenthesis
	FunctionLike bool
}

// Table maps macro names to their current definition
type Table map[string]Macro

func (t Table) clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

var includeDirectives = map[string]bool{
	"include":      true,
	"include_next": true,
	"import":       true,
}

type builder struct {
	file    string
	buf     []byte
	toks    []frontend.RawToken
	lines   *position.Table
	macros  Table
	entries []frontend.PPEntity

	// complete is set when the external table lists every macro defined outside the file
	complete bool
	conds    conditionals
}

// Build walks toks, the raw tokens of buf, and returns the record in source order.
// external is not modified. A nil external means the macros defined outside the file are
// unknown, so #ifdef on a name not defined in the file is undecided.
func Build(ctx context.Context, file string, buf []byte, toks []frontend.RawToken, external Table) []frontend.PPEntity {
	b := &builder{
		file:   file,
		buf:    buf,
		toks:   toks,
		lines:  position.NewTable(buf),
		macros: external.clone(),

		complete: external != nil,
	}

	for i := 0; i < len(toks); {
		tok := toks[i]
		if isHash(tok) && b.startsLine(i) {
			i = b.directive(i)
			continue
		}
		if tok.Kind == frontend.RawIdentifier && b.conds.active() {
			b.expansion(i)
		}
		i++
	}

	zerolog.Ctx(ctx).Debug().
		Int("entities", len(b.entries)).
		Int("macros", len(b.macros)).
		Int("unterminated_conditionals", len(b.conds.stack)).
		Msg("built preprocessing record")

	return b.entries
}

func isHash(tok frontend.RawToken) bool {
	return tok.Kind == frontend.RawPunctuator && (tok.Text == "#" || tok.Text == "%:")
}

// startsLine reports whether token i is the first token on its logical line
func (b *builder) startsLine(i int) bool {
	if i == 0 {
		return true
	}
	for off := b.toks[i-1].End(); off < b.toks[i].Offset; off++ {
		if b.buf[off] != '\n' {
			continue
		}
		spliced := off > 0 && b.buf[off-1] == '\\' ||
			off > 1 && b.buf[off-1] == '\r' && b.buf[off-2] == '\\'
		if !spliced {
			return true
		}
	}
	return false
}

// directive records the directive starting at the hash token i and returns the index of
// the first token after it
func (b *builder) directive(i int) int {
	hash := b.toks[i]

	var body []frontend.RawToken
	next := i + 1
	for ; next < len(b.toks) && !b.startsLine(next); next++ {
		if b.toks[next].Kind != frontend.RawComment {
			body = append(body, b.toks[next])
		}
	}

	if len(body) == 0 || body[0].Kind != frontend.RawIdentifier {
		return next
	}

	name := body[0].Text
	args := body[1:]
	switch name {
	case "if":
		b.conds.open(b.condition(args))
		return next
	case "ifdef":
		b.conds.open(b.definedArg(args))
		return next
	case "ifndef":
		b.conds.open(b.definedArg(args).not())
		return next
	case "elif":
		b.conds.elif(b.condition(args))
		return next
	case "elifdef":
		b.conds.elif(b.definedArg(args))
		return next
	case "elifndef":
		b.conds.elif(b.definedArg(args).not())
		return next
	case "else":
		b.conds.otherwise()
		return next
	case "endif":
		b.conds.close()
		return next
	}

	if !b.conds.active() {
		return next
	}

	switch {
	case includeDirectives[name]:
		last := body[len(body)-1]
		b.entries = append(b.entries, frontend.PPEntity{
			Kind:         frontend.EntityInclusionDirective,
			Begin:        frontend.MainFileLoc(hash.Offset),
			End:          frontend.MainFileLoc(last.Offset),
			InMainFileID: true,
		})

	case name == "define" && len(body) > 1 && body[1].Kind == frontend.RawIdentifier:
		macro := body[1]
		place := b.lines.Place(macro.Offset)
		def := &frontend.MacroDefinition{
			Name:       macro.Text,
			Loc:        frontend.Location{File: b.file, Line: place.Line, Column: place.Column},
			InMainFile: true,
		}
		functionLike := len(body) > 2 && body[2].Text == "(" && body[2].Offset == macro.End()
		b.macros[macro.Text] = Macro{Definition: def, FunctionLike: functionLike}
		b.entries = append(b.entries, frontend.PPEntity{
			Kind:         frontend.EntityMacroDefinition,
			Begin:        frontend.MainFileLoc(macro.Offset),
			End:          frontend.MainFileLoc(body[len(body)-1].Offset),
			InMainFileID: true,
			Definition:   def,
		})

	case name == "undef" && len(body) > 1:
		delete(b.macros, body[1].Text)
	}

	return next
}

// expansion records token i when it names a macro that expands at this point
func (b *builder) expansion(i int) {
	tok := b.toks[i]
	macro, ok := b.macros[tok.Text]
	if !ok {
		return
	}

	end := tok
	if macro.FunctionLike {
		closing, ok := b.invocation(i)
		if !ok {
			return
		}
		end = closing
	}

	b.entries = append(b.entries, frontend.PPEntity{
		Kind:         frontend.EntityMacroExpansion,
		Begin:        frontend.MainFileLoc(tok.Offset),
		End:          frontend.MainFileLoc(end.Offset),
		InMainFileID: true,
		Definition:   macro.Definition,
	})
}

// invocation finds the closing parenthesis of a function-like macro call at token i. An
// unbalanced call ends at the last token.
func (b *builder) invocation(i int) (frontend.RawToken, bool) {
	j := i + 1
	for j < len(b.toks) && b.toks[j].Kind == frontend.RawComment {
		j++
	}
	if j >= len(b.toks) || b.toks[j].Text != "(" {
		return frontend.RawToken{}, false
	}

	depth := 0
	for ; j < len(b.toks); j++ {
		if b.toks[j].Kind != frontend.RawPunctuator {
			continue
		}
		switch b.toks[j].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return b.toks[j], true
			}
		}
	}
	return b.toks[len(b.toks)-1], true
}
