package semantic

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
	"github.com/walteh/clang-highlight/pkg/token"
)

// declRefVisitor links name references to the un-specialized declaration and marks
// references to variables
type declRefVisitor struct {
	store Store
}

func (me *declRefVisitor) HandleDeclRef(ctx context.Context, n *frontend.DeclRefExpr) error {
	if !n.Loc.Annotatable() {
		return nil
	}

	tok, ok := me.store.FindOrSplit(n.Loc.Offset)
	if !ok {
		return missingToken("declaration reference", n.Loc)
	}

	if n.Decl == nil {
		return nil
	}
	target := Unspecialize(n.Decl)

	var kind *token.Kind
	if n.Decl.Kind == frontend.DeclVariable || target.Kind == frontend.DeclVariable {
		kind = ptr(token.KindVariable)
	}

	link := linkTo(target)
	me.store.Overwrite(tok, kind, link)

	zerolog.Ctx(ctx).Trace().Int("offset", n.Loc.Offset).Stringer("decl", target).Bool("linked", link != nil).Msg("declaration reference")
	return nil
}

// varDeclVisitor marks declared variable names
type varDeclVisitor struct {
	store Store
}

func (me *varDeclVisitor) HandleVarDecl(ctx context.Context, n *frontend.VarDecl) error {
	if !n.Loc.Annotatable() {
		return nil
	}

	tok, ok := me.store.FindExact(n.Loc.Offset)
	if !ok {
		return missingToken("variable declaration", n.Loc)
	}

	me.store.Overwrite(tok, ptr(token.KindVariable), nil)
	return nil
}

// typeVisitor links elaborated type mentions to the declaring entity. Links are only
// attached on an exact token match.
type typeVisitor struct {
	store Store
}

func (me *typeVisitor) HandleElaboratedType(ctx context.Context, n *frontend.ElaboratedTypeLoc) error {
	inner := n.Inner
	if inner == nil || inner.Decl == nil || !inner.Begin.Annotatable() {
		return nil
	}

	switch inner.Shape {
	case frontend.TypeTemplateSpecialization, frontend.TypeTypedef, frontend.TypeUsing, frontend.TypeRecord:
	default:
		return nil
	}

	tok, ok := me.store.FindExact(inner.Begin.Offset)
	if !ok {
		return nil
	}

	me.store.Overwrite(tok, nil, linkTo(Unspecialize(inner.Decl)))
	return nil
}

// memberVisitor links member names in member access expressions
type memberVisitor struct {
	store Store
}

func (me *memberVisitor) HandleMemberExpr(ctx context.Context, n *frontend.MemberExpr) error {
	if !n.MemberLoc.Annotatable() {
		return nil
	}

	tok, ok := me.store.FindExact(n.MemberLoc.Offset)
	if !ok {
		return missingToken("member access", n.MemberLoc)
	}

	if n.Member == nil {
		return nil
	}

	me.store.Overwrite(tok, nil, linkTo(Unspecialize(n.Member)))
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
