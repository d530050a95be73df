// Package postprocess refines a finished token index into finer grained tokens for
// renderers: include directives are split into directive and file name, string literals
// into plain text, escape sequences and format fields.
package postprocess

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

type Step uint8

const (
	StepIncludeFiles Step = iota
	StepEscapes
	StepInterpolation
)

// All is every step in the order they are meant to run
var All = []Step{StepIncludeFiles, StepEscapes, StepInterpolation}

func (s Step) String() string {
	switch s {
	case StepIncludeFiles:
		return "include_files"
	case StepEscapes:
		return "escapes"
	case StepInterpolation:
		return "interpolation"
	}
	return "unknown"
}

func ParseStep(name string) (Step, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "include_files", "include-files", "includes":
		return StepIncludeFiles, nil
	case "escapes", "escape_codes":
		return StepEscapes, nil
	case "interpolation", "string_interpolation":
		return StepInterpolation, nil
	}
	return 0, errors.Errorf("unknown post-processing step %q", name)
}

// ParseSteps parses names in order; "all" expands to All
func ParseSteps(names []string) ([]Step, error) {
	var steps []Step
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			steps = append(steps, All...)
			continue
		}
		s, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

var (
	includePattern = regexp.MustCompile(`^(#\s*include(?:_next)?|#\s*import)\s*([<"].*[">])`)

	escapePattern = regexp.MustCompile(`\\(['"?\\abfnrtv]|[0-7]{3}|o\{[0-7]+\}|x[0-9a-fA-F]+|x\{[0-9a-fA-F]+\}|u[0-9a-fA-F]{4}|u\{[0-9a-fA-F]+\}|U[0-9a-fA-F]{8}|N\{[^}]+\})`)

	// a '{' not followed by another '{', up to the first '}'
	interpolationPattern = regexp.MustCompile(`\{(?:\}|[^{}\n][^}\n]*\})`)
)

// Apply runs steps over idx and returns the refined index. idx is not modified.
func Apply(ctx context.Context, idx *tokindex.Index, buf []byte, steps []Step) (*tokindex.Index, error) {
	cur := idx
	for _, step := range steps {
		var split splitter
		switch step {
		case StepIncludeFiles:
			split = splitInclude
		case StepEscapes:
			split = splitEscapes
		case StepInterpolation:
			split = splitInterpolation
		default:
			return nil, errors.Errorf("unknown post-processing step %d", step)
		}

		next, err := rebuild(cur, buf, split)
		if err != nil {
			return nil, errors.Errorf("post-processing %s: %w", step, err)
		}
		zerolog.Ctx(ctx).Debug().Stringer("step", step).Int("before", cur.Len()).Int("after", next.Len()).Msg("post-processing step done")
		cur = next
	}
	return cur, nil
}

// splitter returns the pieces replacing tok, or nil to keep tok as is
type splitter func(tok *token.Token, text []byte) []*token.Token

func rebuild(idx *tokindex.Index, buf []byte, split splitter) (*tokindex.Index, error) {
	out := tokindex.New()
	for tok := range idx.All() {
		pieces := split(tok, tok.Text(buf))
		if pieces == nil {
			c := *tok
			c.Link = tok.Link.Clone()
			pieces = []*token.Token{&c}
		}
		for _, p := range pieces {
			if err := out.Insert(p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func splitInclude(tok *token.Token, text []byte) []*token.Token {
	if tok.Kind != token.KindPreprocessor {
		return nil
	}
	m := includePattern.FindSubmatchIndex(text)
	if m == nil {
		return nil
	}
	return []*token.Token{
		{Offset: tok.Offset + m[2], Length: m[3] - m[2], Kind: token.KindPreprocessor},
		{Offset: tok.Offset + m[4], Length: m[5] - m[4], Kind: token.KindPreprocessorFile, Link: tok.Link.Clone()},
	}
}

func splitEscapes(tok *token.Token, text []byte) []*token.Token {
	if !isQuotedString(tok, text) {
		return nil
	}
	prefix, _, _ := bytes.Cut(text, []byte(`"`))
	if bytes.ContainsRune(prefix, 'R') {
		return nil
	}
	return splitMatches(tok, escapePattern.FindAllIndex(text, -1), token.KindStringLiteralEscape)
}

func splitInterpolation(tok *token.Token, text []byte) []*token.Token {
	if !isQuotedString(tok, text) {
		return nil
	}
	return splitMatches(tok, interpolationPattern.FindAllIndex(text, -1), token.KindStringLiteralInterpolation)
}

func isQuotedString(tok *token.Token, text []byte) bool {
	return tok.Kind == token.KindStringLiteral && bytes.ContainsRune(text, '"')
}

// splitMatches cuts tok at every match; matches get kind and the text between them stays
// a string literal
func splitMatches(tok *token.Token, matches [][]int, kind token.Kind) []*token.Token {
	if len(matches) == 0 {
		return nil
	}

	var out []*token.Token
	add := func(begin, end int, k token.Kind) {
		out = append(out, &token.Token{Offset: tok.Offset + begin, Length: end - begin, Kind: k})
	}

	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			add(pos, m[0], token.KindStringLiteral)
		}
		add(m[0], m[1], kind)
		pos = m[1]
	}
	if pos < tok.Length {
		add(pos, tok.Length, token.KindStringLiteral)
	}
	return out
}
