/*
Package semantic refines the token index with what the AST knows.

Visitors:
--------

	+--------------------+
	| frontend.MatchAST  |
	+--------------------+
	   |    |    |    |
	   v    v    v    v
	declref vardecl type member
	   |    |    |    |
	   +----+----+----+
	        |
	        v
	+--------------------+
	|  Store (tokindex)  |
	+--------------------+

Every visitor locates exactly one entry by offset and overwrites its kind, its link or
both. Visitors never look at each other's results, so the order the front-end reports
nodes in does not change the outcome at any single offset beyond last-write-wins.
*/
package semantic

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/token"
	"gitlab.com/tozd/go/errors"
)

// ErrMissingToken is returned when the AST reports a location that must start a lexical
// token but none does. It indicates a front-end or lexer defect.
var ErrMissingToken = errors.Base("no token at AST location")

// Store is the part of the token index the visitors mutate
type Store interface {
	FindExact(offset int) (*token.Token, bool)
	FindOrSplit(offset int) (*token.Token, bool)
	Overwrite(tok *token.Token, kind *token.Kind, link *token.Link)
}

// Register adds the four visitors over store to f
func Register(f *frontend.MatchFinder, store Store) {
	f.AddDeclRefHandler(&declRefVisitor{store: store})
	f.AddVarDeclHandler(&varDeclVisitor{store: store})
	f.AddTypeLocHandler(&typeVisitor{store: store})
	f.AddMemberExprHandler(&memberVisitor{store: store})
}

// Annotate runs one AST traversal of unit with every visitor registered
func Annotate(ctx context.Context, store Store, unit frontend.Unit) error {
	finder := frontend.NewMatchFinder()
	Register(finder, store)

	if err := unit.MatchAST(ctx, finder); err != nil {
		return errors.Errorf("semantic annotation of %s: %w", unit.MainFile(), err)
	}

	zerolog.Ctx(ctx).Debug().Str("file", unit.MainFile()).Msg("semantic annotation done")
	return nil
}

// linkTo builds the link for d; parameter types are recorded for functions only
func linkTo(d *frontend.Decl) *token.Link {
	var params []string
	if d.Kind == frontend.DeclFunction {
		params = d.ParamTypes
	}
	return token.NewLink(d.Name, d.QualifiedName, d.Loc.File, d.Loc.Line, d.Loc.Column, params)
}

func missingToken(what string, loc frontend.SourceLoc) error {
	return errors.WithDetails(
		errors.Errorf("%s at offset %d: %w", what, loc.Offset, ErrMissingToken),
		"offset", loc.Offset,
	)
}
