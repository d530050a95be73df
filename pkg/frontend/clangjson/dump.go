package clangjson

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"gitlab.com/tozd/go/errors"
)

// Node is one object of clang's `-ast-dump=json` output. Only the fields the annotator
// reads are decoded.
type Node struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Loc   *Loc   `json:"loc"`
	Range *Range `json:"range"`

	Name                string    `json:"name"`
	IsImplicit          bool      `json:"isImplicit"`
	IsInline            bool      `json:"isInline"`
	CompleteDefinition  bool      `json:"completeDefinition"`
	ParentDeclContextID string    `json:"parentDeclContextId"`
	Type                *QualType `json:"type"`

	// ReferencedDecl is set on DeclRefExpr
	ReferencedDecl *DeclRef `json:"referencedDecl"`
	// ReferencedMemberDecl is set on MemberExpr
	ReferencedMemberDecl string `json:"referencedMemberDecl"`
	// Target is set on UsingShadowDecl
	Target *DeclRef `json:"target"`

	ArrayFiller []*Node `json:"array_filler"`
	Inner       []*Node `json:"inner"`
}

type QualType struct {
	QualType string `json:"qualType"`
}

// DeclRef is the bare declaration reference clang prints inside expressions
type DeclRef struct {
	ID   string    `json:"id"`
	Kind string    `json:"kind"`
	Name string    `json:"name"`
	Type *QualType `json:"type"`
}

type Range struct {
	Begin *Loc `json:"begin"`
	End   *Loc `json:"end"`
}

// Loc is a location as printed by clang. File and Line are omitted when unchanged from
// the previously printed location; Resolve fills them back in.
type Loc struct {
	Offset       *int64   `json:"offset"`
	File         string   `json:"file"`
	Line         int64    `json:"line"`
	Col          int64    `json:"col"`
	TokLen       int64    `json:"tokLen"`
	IncludedFrom *Include `json:"includedFrom"`

	SpellingLoc  *Loc `json:"spellingLoc"`
	ExpansionLoc *Loc `json:"expansionLoc"`
}

type Include struct {
	File string `json:"file"`
}

// Spelling returns the location where the characters were written
func (l *Loc) Spelling() *Loc {
	if l == nil {
		return nil
	}
	if l.SpellingLoc != nil {
		return l.SpellingLoc
	}
	return l
}

// Valid reports whether clang printed a real location
func (l *Loc) Valid() bool {
	return l != nil && l.Offset != nil
}

// Decode reads a whole AST dump
func Decode(r io.Reader) (*Node, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Errorf("decoding clang AST dump: %w", err)
	}
	if root.Kind != "TranslationUnitDecl" {
		return nil, errors.WithDetails(errors.New("AST dump does not start with a translation unit"), "kind", root.Kind)
	}
	return &root, nil
}

// Files summarizes the file names a dump mentions
type Files struct {
	// Top is the first real file printed without an include stack
	Top string

	// Seen holds every printed file name, cleaned
	Seen map[string]bool
}

// locTracker undoes clang's delta encoding of file and line
type locTracker struct {
	file  string
	line  int64
	files Files
}

func (t *locTracker) bare(l *Loc) {
	if !l.Valid() {
		return
	}
	if l.File != "" {
		t.file = l.File
	}
	if l.Line != 0 {
		t.line = l.Line
	}
	l.File = t.file
	l.Line = t.line

	if isPseudoFile(l.File) {
		return
	}
	t.files.Seen[filepath.Clean(l.File)] = true
	if t.files.Top == "" && l.IncludedFrom == nil {
		t.files.Top = l.File
	}
}

func (t *locTracker) loc(l *Loc) {
	if l == nil {
		return
	}
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		if l.SpellingLoc != nil {
			t.bare(l.SpellingLoc)
		}
		if l.ExpansionLoc != nil {
			t.bare(l.ExpansionLoc)
		}
		return
	}
	t.bare(l)
}

// node resolves the locations of n itself, in the order clang prints them
func (t *locTracker) node(n *Node) {
	t.loc(n.Loc)
	if n.Range != nil {
		t.loc(n.Range.Begin)
		t.loc(n.Range.End)
	}
}

// Resolve fills in the omitted file and line of every location of the tree rooted at n
func Resolve(n *Node) Files {
	t := &locTracker{files: Files{Seen: map[string]bool{}}}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		t.node(n)
		for _, c := range n.ArrayFiller {
			walk(c)
		}
		for _, c := range n.Inner {
			walk(c)
		}
	}
	walk(n)
	return t.files
}

func isPseudoFile(file string) bool {
	return file == "" || strings.HasPrefix(file, "<")
}

// fileMatcher decides which printed file names denote the main file
type fileMatcher struct {
	main string
}

// newFileMatcher matches main as given, or the dump's top-level file when the dump never
// spells main that way
func newFileMatcher(main string, files Files) fileMatcher {
	m := filepath.Clean(main)
	if !files.Seen[m] && files.Top != "" {
		m = filepath.Clean(files.Top)
	}
	return fileMatcher{main: m}
}

func (m fileMatcher) isMain(file string) bool {
	return file != "" && filepath.Clean(file) == m.main
}

// offset converts a printed offset
func offset(l *Loc) (int, error) {
	off, err := safecast.Conv[int](*l.Offset)
	if err != nil {
		return 0, errors.Errorf("location offset %d: %w", *l.Offset, err)
	}
	return off, nil
}

func lineCol(l *Loc) (int, int, error) {
	line, err := safecast.Conv[int](l.Line)
	if err != nil {
		return 0, 0, errors.Errorf("location line %d: %w", l.Line, err)
	}
	col, err := safecast.Conv[int](l.Col)
	if err != nil {
		return 0, 0, errors.Errorf("location column %d: %w", l.Col, err)
	}
	return line, col, nil
}
