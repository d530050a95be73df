// Package lexical seeds the token index from the raw re-lexed token stream.
package lexical

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/tokindex"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// KindOf returns the initial classification of a raw token. Operators are not told apart
// from other punctuation at this stage.
func KindOf(tok frontend.RawToken, idents frontend.IdentifierTable) token.Kind {
	switch {
	case tok.Kind == frontend.RawNumericConstant:
		return token.KindNumberLiteral
	case tok.Kind.IsStringLiteral():
		return token.KindStringLiteral
	case tok.Kind.IsLiteral():
		return token.KindOtherLiteral
	case tok.Kind == frontend.RawIdentifier:
		if idents != nil && idents.IsKeyword(tok.Text) {
			return token.KindKeyword
		}
		return token.KindName
	case tok.Kind == frontend.RawComment:
		return token.KindComment
	default:
		return token.KindPunctuation
	}
}

// Classify drains lexer into idx, one entry per raw token
func Classify(ctx context.Context, idx *tokindex.Index, lexer frontend.RawLexer, idents frontend.IdentifierTable) error {
	count := 0
	for {
		tok := lexer.Lex()
		if tok.Kind == frontend.RawEOF {
			break
		}

		if err := idx.Insert(&token.Token{
			Offset: tok.Offset,
			Length: tok.Length,
			Kind:   KindOf(tok, idents),
		}); err != nil {
			return errors.Errorf("indexing %s token at %d: %w", tok.Kind, tok.Offset, err)
		}
		count++

		if lexer.AtEnd() {
			break
		}
	}

	zerolog.Ctx(ctx).Debug().Int("tokens", count).Msg("lexical classification done")
	return nil
}

// ClassifyUnit runs Classify over the unit's main buffer
func ClassifyUnit(ctx context.Context, idx *tokindex.Index, unit frontend.Unit) error {
	if _, err := unit.Buffer(); err != nil {
		return errors.Errorf("reading main file buffer: %w", err)
	}

	lexer, err := unit.RawLexer()
	if err != nil {
		return errors.Errorf("creating raw lexer for %s: %w", unit.MainFile(), err)
	}

	return Classify(ctx, idx, lexer, unit.Identifiers())
}
