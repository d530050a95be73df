package clangjson

import (
	"strings"

	"github.com/walteh/clang-highlight/pkg/frontend"
)

var functionKinds = map[string]bool{
	"FunctionDecl":          true,
	"CXXMethodDecl":         true,
	"CXXConstructorDecl":    true,
	"CXXDestructorDecl":     true,
	"CXXConversionDecl":     true,
	"CXXDeductionGuideDecl": true,
}

var variableKinds = map[string]bool{
	"VarDecl":                              true,
	"ParmVarDecl":                          true,
	"DecompositionDecl":                    true,
	"ImplicitParamDecl":                    true,
	"VarTemplateSpecializationDecl":        true,
	"VarTemplatePartialSpecializationDecl": true,
}

var templateKinds = map[string]bool{
	"FunctionTemplateDecl":  true,
	"ClassTemplateDecl":     true,
	"VarTemplateDecl":       true,
	"TypeAliasTemplateDecl": true,
}

var recordKinds = map[string]bool{
	"CXXRecordDecl":                          true,
	"RecordDecl":                             true,
	"ClassTemplateSpecializationDecl":        true,
	"ClassTemplatePartialSpecializationDecl": true,
}

var typedefKinds = map[string]bool{
	"TypedefDecl":   true,
	"TypeAliasDecl": true,
}

// DeclKindOf maps a clang declaration kind onto the annotator's categories
func DeclKindOf(kind string) frontend.DeclKind {
	switch {
	case functionKinds[kind]:
		return frontend.DeclFunction
	case variableKinds[kind]:
		return frontend.DeclVariable
	case templateKinds[kind]:
		return frontend.DeclTemplate
	case recordKinds[kind]:
		return frontend.DeclRecord
	case typedefKinds[kind]:
		return frontend.DeclTypedef
	default:
		return frontend.DeclOther
	}
}

func isDecl(n *Node) bool {
	return n.ID != "" && strings.HasSuffix(n.Kind, "Decl")
}

// templatedKind reports whether a child of template node t is of the kind t parameterizes
func templatedKind(t, child string) bool {
	switch t {
	case "FunctionTemplateDecl":
		return functionKinds[child]
	case "ClassTemplateDecl":
		return recordKinds[child]
	case "VarTemplateDecl":
		return variableKinds[child]
	case "TypeAliasTemplateDecl":
		return child == "TypeAliasDecl"
	}
	return false
}

// declNode is a declaration of the graph with what qualified names are built from
type declNode struct {
	decl   *frontend.Decl
	node   *Node
	parent *declNode

	// instantiated is set for declarations the compiler generated from a template
	instantiated bool
	// memberOfInstance is set for direct members of an instantiated class
	memberOfInstance bool
	// complete is set for definitions
	complete bool

	// template is the template declaration whose specialization this is
	template *declNode
	// templated is the declaration a template declaration parameterizes
	templated *declNode

	qualified bool
}

// writtenKey identifies a declaration written in source; instantiations repeat the key of
// the declaration they were generated from
type writtenKey struct {
	kind   frontend.DeclKind
	name   string
	file   string
	offset int64
}

func keyOf(d *declNode) (writtenKey, bool) {
	l := d.node.Loc.Spelling()
	if !l.Valid() {
		return writtenKey{}, false
	}
	return writtenKey{kind: d.decl.Kind, name: d.decl.Name, file: l.File, offset: *l.Offset}, true
}

// graph holds every declaration of the dump by id
type graph struct {
	byID    map[string]*declNode
	order   []*declNode
	written map[writtenKey]*declNode
	stubs   map[string]*frontend.Decl
}

func newGraph() *graph {
	return &graph{
		byID:    map[string]*declNode{},
		written: map[writtenKey]*declNode{},
		stubs:   map[string]*frontend.Decl{},
	}
}

// add registers n under parent; repeated ids keep the first registration
func (g *graph) add(n *Node, parent *declNode, instantiated bool) (*declNode, error) {
	if d, ok := g.byID[n.ID]; ok {
		return d, nil
	}

	d := &declNode{
		decl: &frontend.Decl{
			Kind:          DeclKindOf(n.Kind),
			Name:          n.Name,
			QualifiedName: n.Name,
		},
		node:         n,
		parent:       parent,
		instantiated: instantiated,
		complete:     n.CompleteDefinition || typedefKinds[n.Kind],
	}

	if l := n.Loc.Spelling(); l.Valid() && !isPseudoFile(l.File) {
		line, col, err := lineCol(l)
		if err != nil {
			return nil, err
		}
		d.decl.Loc = frontend.Location{File: l.File, Line: line, Column: col}
	}

	if d.decl.Kind == frontend.DeclFunction {
		d.decl.ParamTypes = paramTypes(n)
	}

	g.byID[n.ID] = d
	g.order = append(g.order, d)

	if !instantiated {
		if key, ok := keyOf(d); ok {
			if _, seen := g.written[key]; !seen {
				g.written[key] = d
			}
		}
	}
	return d, nil
}

func paramTypes(n *Node) []string {
	var out []string
	for _, c := range n.Inner {
		if c.Kind != "ParmVarDecl" {
			continue
		}
		t := ""
		if c.Type != nil {
			t = c.Type.QualType
		}
		out = append(out, t)
	}
	return out
}

// lookup returns the declaration for a bare reference, creating a location-less stub for
// declarations the dump never printed in full
func (g *graph) lookup(ref *DeclRef) *frontend.Decl {
	if ref == nil || ref.ID == "" {
		return nil
	}
	if d, ok := g.byID[ref.ID]; ok {
		return d.decl
	}
	if d, ok := g.stubs[ref.ID]; ok {
		return d
	}
	d := &frontend.Decl{Kind: DeclKindOf(ref.Kind), Name: ref.Name, QualifiedName: ref.Name}
	g.stubs[ref.ID] = d
	return d
}

func (g *graph) lookupID(id string) *frontend.Decl {
	if d, ok := g.byID[id]; ok {
		return d.decl
	}
	return nil
}

// link fills in qualified names and template metadata once every declaration is known
func (g *graph) link() {
	for _, d := range g.order {
		g.qualify(d)
	}

	for _, d := range g.order {
		if !d.instantiated {
			continue
		}
		key, ok := keyOf(d)
		if !ok {
			continue
		}
		origin, ok := g.written[key]
		if !ok || origin == d {
			continue
		}
		switch {
		case d.decl.Kind == frontend.DeclTemplate:
			d.decl.InstantiatedFrom = origin.decl
		case d.decl.Kind == frontend.DeclFunction && d.memberOfInstance:
			d.decl.MemberFunctionOrigin = origin.decl
		}
	}

	for _, d := range g.order {
		if d.template == nil || d.decl.Kind != frontend.DeclFunction {
			continue
		}
		tmpl := d.template.decl
		spec := &frontend.Specialization{Pattern: tmpl.TemplatedDecl}
		if from := tmpl.InstantiatedFrom; from != nil && from.TemplatedDecl != nil {
			spec.MemberTemplateOrigin = from.TemplatedDecl
		}
		if spec.Pattern != nil && spec.Pattern != d.decl {
			d.decl.Specialization = spec
		}
	}
}

// semanticParent follows parentDeclContextId for out-of-line declarations
func (g *graph) semanticParent(d *declNode) *declNode {
	if id := d.node.ParentDeclContextID; id != "" {
		if p, ok := g.byID[id]; ok {
			return p
		}
	}
	return d.parent
}

// qualify builds the qualified name of d: inline namespaces, linkage specifications and
// template wrappers are left out
func (g *graph) qualify(d *declNode) string {
	if d.qualified {
		return d.decl.QualifiedName
	}
	d.qualified = true

	var scopes []string
	for p := g.semanticParent(d); p != nil; p = g.semanticParent(p) {
		if s, ok := scopeName(p); ok {
			scopes = append(scopes, s)
		}
	}

	name := d.decl.Name
	for _, s := range scopes {
		name = s + "::" + name
	}
	d.decl.QualifiedName = name
	return name
}

func scopeName(p *declNode) (string, bool) {
	switch n := p.node; {
	case n.Kind == "NamespaceDecl":
		if n.IsInline {
			return "", false
		}
		if n.Name == "" {
			return "(anonymous namespace)", true
		}
		return n.Name, true
	case recordKinds[n.Kind], n.Kind == "EnumDecl", functionKinds[n.Kind]:
		if n.Name == "" {
			return "(anonymous)", true
		}
		return n.Name, true
	default:
		return "", false
	}
}
