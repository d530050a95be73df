package clangjson

import (
	"strings"

	"github.com/walteh/clang-highlight/pkg/frontend"
)

// typeEntry is a declaration a written type name can refer to
type typeEntry struct {
	node  *declNode
	shape frontend.TypeShape
	// decl is what the type mention links to; for using declarations the target
	decl *frontend.Decl
}

func (e typeEntry) qualifiedName() string {
	return e.node.decl.QualifiedName
}

func (e typeEntry) complete() bool {
	if e.node.complete {
		return true
	}
	return e.node.templated != nil && e.node.templated.complete
}

// typeIndex maps unqualified type names to the declarations written in source
type typeIndex map[string][]typeEntry

func newTypeIndex(g *graph) typeIndex {
	ix := typeIndex{}
	for _, d := range g.order {
		if d.instantiated || d.decl.Name == "" {
			continue
		}
		n := d.node

		e := typeEntry{node: d, decl: d.decl}
		switch {
		case n.Kind == "ClassTemplateDecl", n.Kind == "TypeAliasTemplateDecl":
			e.shape = frontend.TypeTemplateSpecialization
		case n.Kind == "CXXRecordDecl", n.Kind == "RecordDecl":
			if d.parent != nil && templateKinds[d.parent.node.Kind] {
				continue
			}
			e.shape = frontend.TypeRecord
		case typedefKinds[n.Kind]:
			if d.parent != nil && templateKinds[d.parent.node.Kind] {
				continue
			}
			e.shape = frontend.TypeTypedef
		case n.Kind == "UsingShadowDecl":
			target := g.lookup(n.Target)
			if target == nil {
				continue
			}
			switch target.Kind {
			case frontend.DeclRecord, frontend.DeclTypedef, frontend.DeclTemplate:
			default:
				continue
			}
			e.shape = frontend.TypeUsing
			e.decl = target
		default:
			continue
		}
		ix[d.decl.Name] = append(ix[d.decl.Name], e)
	}
	return ix
}

// resolve finds the single declaration a mention of name, written after qualifier, can
// refer to. Mentions matching declarations with different qualified names are left alone.
func (ix typeIndex) resolve(name, qualifier string, template bool) (typeEntry, bool) {
	want := strings.TrimPrefix(qualifier+name, "::")

	var picked []typeEntry
	for _, e := range ix[name] {
		if (e.shape == frontend.TypeTemplateSpecialization) != template {
			continue
		}
		if qualifier != "" {
			qn := e.qualifiedName()
			if qn != want && !strings.HasSuffix(qn, "::"+want) {
				continue
			}
		}
		picked = append(picked, e)
	}
	if len(picked) == 0 {
		return typeEntry{}, false
	}

	for _, e := range picked[1:] {
		if e.qualifiedName() != picked[0].qualifiedName() {
			return typeEntry{}, false
		}
	}

	for _, e := range picked {
		if e.complete() {
			return e, true
		}
	}
	return picked[0], true
}

// typeRegion returns the main file offsets [lo, hi) a declaration spells its type in
func (c *converter) typeRegion(d *declNode) (int, int, bool, error) {
	n := d.node
	begin, end, ok, err := c.span(n.Range)
	if err != nil || !ok {
		return 0, 0, false, err
	}
	name, err := c.srcLoc(n.Loc)
	if err != nil {
		return 0, 0, false, err
	}
	named := n.Name != "" && name.Annotatable() && name.Offset >= begin && name.Offset <= end

	switch {
	case n.Kind == "TypeAliasDecl":
		if !named {
			return 0, 0, false, nil
		}
		return name.Offset + 1, end + 1, true, nil
	case n.Kind == "VarDecl", n.Kind == "ParmVarDecl", n.Kind == "FieldDecl",
		n.Kind == "FunctionDecl", n.Kind == "CXXMethodDecl", n.Kind == "TypedefDecl":
		if !named {
			if n.Kind == "ParmVarDecl" {
				return begin, end + 1, true, nil
			}
			return 0, 0, false, nil
		}
		return begin, name.Offset, true, nil
	}
	return 0, 0, false, nil
}

// recoverTypes rebuilds the elaborated type mentions of d's written type from the raw
// tokens, since the dump carries types as strings only
func (c *converter) recoverTypes(d *declNode) error {
	lo, hi, ok, err := c.typeRegion(d)
	if err != nil || !ok {
		return err
	}

	toks := c.src.Tokens
	first := firstToken(toks, lo)
	text := func(i int) string {
		if i < first || i >= len(toks) {
			return ""
		}
		return toks[i].Text
	}

	for i := first; i < len(toks) && toks[i].Offset < hi; i++ {
		tok := toks[i]
		if tok.Kind != frontend.RawIdentifier || c.isKeyword(tok.Text) {
			continue
		}
		if text(i+1) == "::" || text(i-1) == "." || text(i-1) == "->" {
			continue
		}

		j, qualifier := i, ""
		for text(j-1) == "::" && j-2 >= first && toks[j-2].Kind == frontend.RawIdentifier {
			qualifier = toks[j-2].Text + "::" + qualifier
			j -= 2
		}
		if text(j-1) == "::" {
			// nested in a template specialization such as vector<int>::iterator
			if text(j-2) == ">" {
				continue
			}
			qualifier = "::" + qualifier
			j--
		}

		e, ok := c.types.resolve(tok.Text, qualifier, text(i+1) == "<")
		if !ok || c.typed[tok.Offset] {
			continue
		}
		c.typed[tok.Offset] = true

		c.out = append(c.out, &frontend.ElaboratedTypeLoc{
			Loc: frontend.MainFileLoc(toks[j].Offset),
			Inner: &frontend.TypeLoc{
				Shape: e.shape,
				Begin: frontend.MainFileLoc(tok.Offset),
				Decl:  e.decl,
			},
		})
	}
	return nil
}

func (c *converter) isKeyword(ident string) bool {
	return c.src.Identifiers != nil && c.src.Identifiers.IsKeyword(ident)
}
