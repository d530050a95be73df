package frontend

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// DeclRefExpr is a reference to a declaration from an expression
type DeclRefExpr struct {
	// Loc is the spelling location of the referenced name
	Loc  SourceLoc
	Decl *Decl
}

// VarDecl is a variable declaration written in source
type VarDecl struct {
	// Loc is the spelling location of the declared name
	Loc  SourceLoc
	Decl *Decl
}

// TypeShape is the concrete form of the type inside an elaborated type reference
type TypeShape uint8

const (
	TypeOther TypeShape = iota
	TypeTemplateSpecialization
	TypeTypedef
	TypeUsing
	TypeRecord
)

func (s TypeShape) String() string {
	switch s {
	case TypeTemplateSpecialization:
		return "template_specialization"
	case TypeTypedef:
		return "typedef"
	case TypeUsing:
		return "using"
	case TypeRecord:
		return "record"
	default:
		return "other"
	}
}

// TypeLoc is a located, non-elaborated type
type TypeLoc struct {
	Shape TypeShape

	// Begin is the begin location of the type name itself, past any qualifier
	Begin SourceLoc

	// Decl depends on Shape: the template declaration of a specialization, the typedef
	// or alias declaration, the declaration found through a using declaration, or the
	// record declaration.
	Decl *Decl
}

// ElaboratedTypeLoc is a type mention that may carry a keyword and qualification
type ElaboratedTypeLoc struct {
	// Loc is where the whole mention begins, keyword or qualifier included
	Loc SourceLoc

	// Inner is the underlying type; nil when the front-end could not resolve it
	Inner *TypeLoc
}

// MemberExpr is a member access expression
type MemberExpr struct {
	// MemberLoc is the spelling location of the member name
	MemberLoc SourceLoc
	Member    *Decl
}

// Node is one of DeclRefExpr, VarDecl, ElaboratedTypeLoc or MemberExpr
type Node interface {
	isNode()
}

func (*DeclRefExpr) isNode()       {}
func (*VarDecl) isNode()           {}
func (*ElaboratedTypeLoc) isNode() {}
func (*MemberExpr) isNode()        {}

type DeclRefHandler interface {
	HandleDeclRef(ctx context.Context, n *DeclRefExpr) error
}

type VarDeclHandler interface {
	HandleVarDecl(ctx context.Context, n *VarDecl) error
}

type TypeLocHandler interface {
	HandleElaboratedType(ctx context.Context, n *ElaboratedTypeLoc) error
}

type MemberExprHandler interface {
	HandleMemberExpr(ctx context.Context, n *MemberExpr) error
}

// MatchFinder collects handlers for the four query patterns and dispatches matched nodes
// to them. A handler error aborts the traversal.
type MatchFinder struct {
	declRefs    []DeclRefHandler
	varDecls    []VarDeclHandler
	typeLocs    []TypeLocHandler
	memberExprs []MemberExprHandler
}

func NewMatchFinder() *MatchFinder {
	return &MatchFinder{}
}

func (f *MatchFinder) AddDeclRefHandler(h DeclRefHandler) {
	f.declRefs = append(f.declRefs, h)
}

func (f *MatchFinder) AddVarDeclHandler(h VarDeclHandler) {
	f.varDecls = append(f.varDecls, h)
}

func (f *MatchFinder) AddTypeLocHandler(h TypeLocHandler) {
	f.typeLocs = append(f.typeLocs, h)
}

func (f *MatchFinder) AddMemberExprHandler(h MemberExprHandler) {
	f.memberExprs = append(f.memberExprs, h)
}

// Match dispatches one node to every handler registered for its pattern
func (f *MatchFinder) Match(ctx context.Context, node Node) error {
	switch n := node.(type) {
	case *DeclRefExpr:
		for _, h := range f.declRefs {
			if err := h.HandleDeclRef(ctx, n); err != nil {
				return err
			}
		}
	case *VarDecl:
		for _, h := range f.varDecls {
			if err := h.HandleVarDecl(ctx, n); err != nil {
				return err
			}
		}
	case *ElaboratedTypeLoc:
		for _, h := range f.typeLocs {
			if err := h.HandleElaboratedType(ctx, n); err != nil {
				return err
			}
		}
	case *MemberExpr:
		for _, h := range f.memberExprs {
			if err := h.HandleMemberExpr(ctx, n); err != nil {
				return err
			}
		}
	default:
		return errors.Errorf("unsupported node type %T", node)
	}
	return nil
}
