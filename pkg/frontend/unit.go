package frontend

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// Unit is one parsed compilation unit as seen by the annotator
type Unit interface {
	// MainFile is the path of the file being annotated
	MainFile() string

	// Buffer returns the main file's bytes exactly as the front-end parsed them
	Buffer() ([]byte, error)

	// RawLexer returns a fresh raw re-lexer over the main file buffer
	RawLexer() (RawLexer, error)

	// Identifiers is the reserved-word lookup for the unit's language options
	Identifiers() IdentifierTable

	// PreprocessingRecord returns the preprocessing entities in record order
	PreprocessingRecord() []PPEntity

	// MatchAST traverses the AST once, feeding every matched node to f
	MatchAST(ctx context.Context, f *MatchFinder) error
}

// RecordedUnit is a Unit whose traversal has already been flattened into a node list.
// Adapters build one after converting a front-end's output; tests build them by hand.
type RecordedUnit struct {
	File     string
	Source   []byte
	Tokens   []RawToken
	Keywords IdentifierTable
	Entities []PPEntity
	Nodes    []Node
}

var _ Unit = (*RecordedUnit)(nil)

func (u *RecordedUnit) MainFile() string {
	return u.File
}

func (u *RecordedUnit) Buffer() ([]byte, error) {
	if u.Source == nil {
		return nil, errors.Errorf("no source text for %s", u.File)
	}
	return u.Source, nil
}

func (u *RecordedUnit) RawLexer() (RawLexer, error) {
	if u.Source == nil {
		return nil, errors.Errorf("no source text for %s", u.File)
	}
	return NewTokenStream(u.Tokens, len(u.Source)), nil
}

func (u *RecordedUnit) Identifiers() IdentifierTable {
	return u.Keywords
}

func (u *RecordedUnit) PreprocessingRecord() []PPEntity {
	return u.Entities
}

func (u *RecordedUnit) MatchAST(ctx context.Context, f *MatchFinder) error {
	for _, n := range u.Nodes {
		if err := f.Match(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
