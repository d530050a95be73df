package clangjson

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/clang-highlight/pkg/frontend"
)

// Source is the main file as the raw lexer saw it
type Source struct {
	File        string
	Tokens      []frontend.RawToken
	Identifiers frontend.IdentifierTable
}

type pending struct {
	node *Node
	decl *declNode
}

type converter struct {
	g       *graph
	files   fileMatcher
	src     Source
	pending []pending
	types   typeIndex
	typed   map[int]bool
	out     []frontend.Node
}

// Convert turns a decoded dump into the match nodes the semantic visitors consume, in
// document order. Locations are resolved in place.
func Convert(ctx context.Context, root *Node, src Source) ([]frontend.Node, error) {
	c := &converter{
		g:     newGraph(),
		files: newFileMatcher(src.File, Resolve(root)),
		src:   src,
		typed: map[int]bool{},
	}

	for _, n := range root.Inner {
		if err := c.walk(n, nil, false, false); err != nil {
			return nil, err
		}
	}
	c.g.link()
	c.types = newTypeIndex(c.g)

	for _, p := range c.pending {
		if err := c.emit(p); err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("decls", len(c.g.order)).
		Int("nodes", len(c.out)).
		Str("main", c.files.main).
		Msg("converted clang AST")

	return c.out, nil
}

// walk registers declarations and queues matchable nodes. instantiated is set below
// compiler generated specializations; instanceMember below an instantiated class.
func (c *converter) walk(n *Node, parent *declNode, instantiated, instanceMember bool) error {
	if n == nil {
		return nil
	}

	self := parent
	if isDecl(n) {
		d, err := c.g.add(n, parent, instantiated)
		if err != nil {
			return err
		}
		if d.node == n {
			d.memberOfInstance = instanceMember && d.decl.Kind == frontend.DeclFunction
		}
		self = d
	}

	switch {
	case n.Kind == "DeclRefExpr", n.Kind == "MemberExpr":
		c.pending = append(c.pending, pending{node: n})
	case self != parent && !instantiated && !n.IsImplicit:
		c.pending = append(c.pending, pending{node: n, decl: self})
	}

	childMember := false
	switch {
	case templateKinds[n.Kind]:
		childMember = instanceMember
	case n.Kind == "ClassTemplateSpecializationDecl" && instantiated:
		childMember = true
	}

	if templateKinds[n.Kind] && self != parent {
		return c.walkTemplate(n, self, instantiated, childMember)
	}

	for _, ch := range n.ArrayFiller {
		if err := c.walk(ch, self, instantiated, false); err != nil {
			return err
		}
	}
	for _, ch := range n.Inner {
		if err := c.walk(ch, self, instantiated, childMember); err != nil {
			return err
		}
	}
	return nil
}

// walkTemplate visits the children of a template declaration: parameters, the templated
// declaration, then the specializations clang generated
func (c *converter) walkTemplate(n *Node, tmpl *declNode, instantiated, instanceMember bool) error {
	for _, ch := range n.Inner {
		isSpec := ch.Kind == "ClassTemplateSpecializationDecl" || ch.Kind == "VarTemplateSpecializationDecl" ||
			tmpl.templated != nil && templatedKind(n.Kind, ch.Kind)
		isTemplated := !isSpec && tmpl.templated == nil && templatedKind(n.Kind, ch.Kind)

		if err := c.walk(ch, tmpl, instantiated || isSpec, instanceMember); err != nil {
			return err
		}

		d, ok := c.g.byID[ch.ID]
		switch {
		case !ok:
		case isTemplated:
			tmpl.templated = d
			tmpl.decl.TemplatedDecl = d.decl
		case isSpec && d.template == nil:
			d.template = tmpl
		}
	}
	return nil
}

func (c *converter) emit(p pending) error {
	n := p.node
	switch {
	case n.Kind == "DeclRefExpr":
		if n.ReferencedDecl == nil {
			return nil
		}
		// compiler generated variables such as __range1 have no spelling
		if d, ok := c.g.byID[n.ReferencedDecl.ID]; ok && d.node.IsImplicit {
			return nil
		}
		loc, err := c.nameLoc(n.Range, n.ReferencedDecl.Name)
		if err != nil {
			return err
		}
		c.out = append(c.out, &frontend.DeclRefExpr{Loc: loc, Decl: c.g.lookup(n.ReferencedDecl)})

	case n.Kind == "MemberExpr":
		loc, err := c.nameLoc(n.Range, n.Name)
		if err != nil {
			return err
		}
		c.out = append(c.out, &frontend.MemberExpr{MemberLoc: loc, Member: c.g.lookupID(n.ReferencedMemberDecl)})

	case p.decl != nil:
		if err := c.recoverTypes(p.decl); err != nil {
			return err
		}
		if (n.Kind == "VarDecl" || n.Kind == "ParmVarDecl") && n.Name != "" {
			loc, err := c.srcLoc(n.Loc)
			if err != nil {
				return err
			}
			if loc.Annotatable() {
				c.out = append(c.out, &frontend.VarDecl{Loc: loc, Decl: p.decl.decl})
			}
		}
	}
	return nil
}

// srcLoc resolves a printed location to its spelling in the main file
func (c *converter) srcLoc(l *Loc) (frontend.SourceLoc, error) {
	sp := l.Spelling()
	if !sp.Valid() || isPseudoFile(sp.File) {
		return frontend.SourceLoc{}, nil
	}
	if !c.files.isMain(sp.File) {
		return frontend.SourceLoc{Valid: true}, nil
	}
	off, err := offset(sp)
	if err != nil {
		return frontend.SourceLoc{}, err
	}
	return frontend.MainFileLoc(off), nil
}

// span resolves a range whose both ends are spelled in the main file
func (c *converter) span(r *Range) (int, int, bool, error) {
	if r == nil {
		return 0, 0, false, nil
	}
	begin, err := c.srcLoc(r.Begin)
	if err != nil {
		return 0, 0, false, err
	}
	end, err := c.srcLoc(r.End)
	if err != nil {
		return 0, 0, false, err
	}
	if !begin.Annotatable() || !end.Annotatable() || end.Offset < begin.Offset {
		return 0, 0, false, nil
	}
	return begin.Offset, end.Offset, true, nil
}

// nameLoc recovers where name is spelled inside an expression range. The dump only
// carries the range, so the last matching raw token wins. A single token range that does
// not spell the name is taken as is only for overloaded operators.
func (c *converter) nameLoc(r *Range, name string) (frontend.SourceLoc, error) {
	begin, end, ok, err := c.span(r)
	if err != nil || !ok {
		return frontend.SourceLoc{}, err
	}

	if off, ok := findName(c.src.Tokens, begin, end, name); ok {
		return frontend.MainFileLoc(off), nil
	}
	if begin == end && strings.HasPrefix(name, "operator") {
		return frontend.MainFileLoc(begin), nil
	}
	return frontend.SourceLoc{}, nil
}

// firstToken returns the index of the first token at or after offset
func firstToken(toks []frontend.RawToken, offset int) int {
	return sort.Search(len(toks), func(i int) bool { return toks[i].Offset >= offset })
}

func findName(toks []frontend.RawToken, begin, end int, name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	found, ok := 0, false
	for i := firstToken(toks, begin); i < len(toks) && toks[i].Offset <= end; i++ {
		tok := toks[i]
		switch {
		case tok.Kind == frontend.RawIdentifier && tok.Text == name:
			found, ok = tok.Offset, true
		case name[0] == '~' && tok.Text == "~" && i+1 < len(toks) && toks[i+1].Text == name[1:]:
			found, ok = tok.Offset, true
		}
	}
	return found, ok
}
